package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-bot/models"
)

func newOrderDetailsApp() *fiber.App {
	app := fiber.New()
	app.Get("/orders/:orderID", GetOrderDetails)
	return app
}

func restoreOrderSeams(t *testing.T) {
	t.Helper()
	prevOrder, prevCustomer := orderByID, customerByID
	t.Cleanup(func() {
		orderByID, customerByID = prevOrder, prevCustomer
	})
}

func TestGetOrderDetailsMissingOrderIs404(t *testing.T) {
	restoreOrderSeams(t)
	orderByID = func(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
		return nil, nil
	}

	app := newOrderDetailsApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/orders/"+primitive.NewObjectID().Hex(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetOrderDetailsDatastoreFailureIs500(t *testing.T) {
	restoreOrderSeams(t)
	orderByID = func(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
		return nil, errors.New("connection reset")
	}

	app := newOrderDetailsApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/orders/"+primitive.NewObjectID().Hex(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode,
		"a datastore failure must not masquerade as a missing order")
}

func TestGetOrderDetailsIncludesCustomer(t *testing.T) {
	restoreOrderSeams(t)

	customerID := primitive.NewObjectID()
	orderByID = func(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
		return &models.Order{ID: id, CustomerID: customerID, DisplayNumber: "ORD-A1B2C3"}, nil
	}
	customerByID = func(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
		assert.Equal(t, customerID, id)
		return &models.Customer{ID: id, Name: "Nguyen Van A", Phone: "0912345678"}, nil
	}

	app := newOrderDetailsApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/orders/"+primitive.NewObjectID().Hex(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Order    *models.Order    `json:"order"`
		Customer *models.Customer `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NotNil(t, payload.Order)
	assert.Equal(t, "ORD-A1B2C3", payload.Order.DisplayNumber)
	require.NotNil(t, payload.Customer)
	assert.Equal(t, "Nguyen Van A", payload.Customer.Name)
}

func TestGetOrderDetailsInvalidIDIs400(t *testing.T) {
	app := newOrderDetailsApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/orders/not-a-hex-id", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
