package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-bot/models"
)

// OrderLineRequest is one requested line of a bot order before validation.
type OrderLineRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// ValidateItems checks each requested line against the catalog and prices
// it. Existence is checked before stock, so a missing product is never
// misreported as insufficient stock. Pure validation: stock is read, never
// decremented.
func ValidateItems(ctx context.Context, items []OrderLineRequest, lookup ProductLookup) ([]models.OrderItem, float64, error) {
	if len(items) == 0 {
		return nil, 0, &ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}

	validated := make([]models.OrderItem, 0, len(items))
	var subtotal float64

	for _, item := range items {
		if item.ProductID == "" {
			return nil, 0, &ValidationError{Field: "items", Reason: "missing product id"}
		}
		if item.Quantity <= 0 {
			return nil, 0, &ValidationError{Field: "items", Reason: "quantity must be greater than zero"}
		}

		product, err := lookup(ctx, item.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if product == nil {
			return nil, 0, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if product.Stock < item.Quantity {
			return nil, 0, &InsufficientStockError{
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Stock,
			}
		}

		quantity := Round2(item.Quantity)
		lineTotal := Round2(product.Price * quantity)
		validated = append(validated, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal
	}

	return validated, Round2(subtotal), nil
}

// DisplayNumber derives a short human-readable order number from the order
// id, for reference in chat replies.
func DisplayNumber(orderID primitive.ObjectID) string {
	hex := orderID.Hex()
	return "ORD-" + strings.ToUpper(hex[len(hex)-6:])
}

// WriteOrder persists the order together with its snapshot line items as a
// single document. Each invocation gets a fresh reference token; repeated
// delivery of the same upstream chat event creates a new order.
func WriteOrder(ctx context.Context, customerID primitive.ObjectID, items []models.OrderItem, totals OrderTotals, address string) (*models.Order, error) {
	id := primitive.NewObjectID()
	order := &models.Order{
		ID:            id,
		CustomerID:    customerID,
		Status:        models.OrderStatusPending,
		Items:         items,
		Total:         totals.Total,
		Discount:      totals.Discount,
		ShippingFee:   totals.ShippingFee,
		PaidAmount:    totals.PaidAmount,
		DebtAmount:    totals.DebtAmount,
		PaymentStatus: totals.PaymentStatus,
		Address:       address,
		Origin:        models.OrderOriginChatbot,
		Reference:     uuid.NewString(),
		DisplayNumber: DisplayNumber(id),
		CreatedAt:     time.Now(),
	}

	collection := GetDatabase().Collection("orders")
	if _, err := collection.InsertOne(ctx, order); err != nil {
		return nil, &PersistenceError{Op: "order create", Err: err}
	}

	slog.Info("Order created",
		"orderID", order.ID.Hex(),
		"displayNumber", order.DisplayNumber,
		"customerID", customerID.Hex(),
		"total", order.Total,
		"paymentStatus", order.PaymentStatus,
	)

	return order, nil
}

// GetOrderByID retrieves a single order. Returns nil without error when the
// order does not exist, so callers can tell a missing order from a datastore
// failure.
func GetOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	collection := GetDatabase().Collection("orders")

	var order models.Order
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "order lookup", Err: err}
	}

	return &order, nil
}

// GetOrders retrieves orders with pagination, newest first.
func GetOrders(ctx context.Context, limit, skip int) ([]models.Order, int64, error) {
	collection := GetDatabase().Collection("orders")

	totalCount, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}

	return orders, totalCount, nil
}
