package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-bot/models"
)

func catalogLookup(products map[string]*models.Product) ProductLookup {
	return func(ctx context.Context, id string) (*models.Product, error) {
		return products[id], nil
	}
}

func TestValidateItems(t *testing.T) {
	laptopID := primitive.NewObjectID()
	riceID := primitive.NewObjectID()
	lookup := catalogLookup(map[string]*models.Product{
		laptopID.Hex(): {ID: laptopID, Name: "Laptop Pro", Price: 10.00, Stock: 5},
		riceID.Hex():   {ID: riceID, Name: "Rice 5kg", Price: 4.50, Stock: 100},
	})

	items, subtotal, err := ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: laptopID.Hex(), Quantity: 3},
		{ProductID: riceID.Hex(), Quantity: 2},
	}, lookup)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Laptop Pro", items[0].ProductName)
	assert.Equal(t, 30.00, items[0].LineTotal)
	assert.Equal(t, 9.00, items[1].LineTotal)
	assert.Equal(t, 39.00, subtotal)
}

func TestValidateItemsFractionalQuantity(t *testing.T) {
	id := primitive.NewObjectID()
	lookup := catalogLookup(map[string]*models.Product{
		id.Hex(): {ID: id, Name: "Coffee beans", Price: 3.33, Stock: 10},
	})

	items, subtotal, err := ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: id.Hex(), Quantity: 1.5},
	}, lookup)
	require.NoError(t, err)
	assert.Equal(t, 1.5, items[0].Quantity)
	assert.Equal(t, 5.00, items[0].LineTotal, "3.33 * 1.5 = 4.995 rounds half up to 5.00")
	assert.Equal(t, 5.00, subtotal)
}

func TestValidateItemsProductNotFound(t *testing.T) {
	lookup := catalogLookup(map[string]*models.Product{})
	missingID := primitive.NewObjectID().Hex()

	_, _, err := ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: missingID, Quantity: 1},
	}, lookup)

	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missingID, notFound.ProductID, "error must name the requested id")
}

func TestValidateItemsInsufficientStock(t *testing.T) {
	id := primitive.NewObjectID()
	lookup := catalogLookup(map[string]*models.Product{
		id.Hex(): {ID: id, Name: "Laptop Pro", Price: 10.00, Stock: 5},
	})

	_, _, err := ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: id.Hex(), Quantity: 6},
	}, lookup)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Laptop Pro", stockErr.ProductName)
	assert.Equal(t, 6.0, stockErr.Requested)
	assert.Equal(t, 5.0, stockErr.Available)
	assert.Contains(t, stockErr.Error(), "Laptop Pro", "message must be specific enough to show the customer")
}

func TestValidateItemsMissingProductNotReportedAsStock(t *testing.T) {
	// Existence is checked before stock, so a missing product must never be
	// misreported as insufficient stock.
	lookup := catalogLookup(map[string]*models.Product{})

	_, _, err := ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: primitive.NewObjectID().Hex(), Quantity: 1000},
	}, lookup)

	var stockErr *InsufficientStockError
	assert.False(t, errors.As(err, &stockErr))

	var notFound *ProductNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestValidateItemsRejectsBadInput(t *testing.T) {
	id := primitive.NewObjectID()
	lookup := catalogLookup(map[string]*models.Product{
		id.Hex(): {ID: id, Name: "Laptop Pro", Price: 10.00, Stock: 5},
	})

	var validationErr *ValidationError

	_, _, err := ValidateItems(context.Background(), nil, lookup)
	assert.True(t, errors.As(err, &validationErr), "empty item list")

	_, _, err = ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: id.Hex(), Quantity: 0},
	}, lookup)
	assert.True(t, errors.As(err, &validationErr), "zero quantity")

	_, _, err = ValidateItems(context.Background(), []OrderLineRequest{
		{ProductID: id.Hex(), Quantity: -2},
	}, lookup)
	assert.True(t, errors.As(err, &validationErr), "negative quantity")
}

func TestDisplayNumber(t *testing.T) {
	id := primitive.NewObjectID()
	number := DisplayNumber(id)

	assert.Len(t, number, 10, "ORD- plus six hex characters")
	assert.Equal(t, "ORD-", number[:4])
	assert.Equal(t, number, DisplayNumber(id), "deterministic for the same order id")
}
