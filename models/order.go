package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is persisted in one document together with its snapshot line items,
// so the order and its items are always visible as a unit.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	Status        string             `bson:"status" json:"status"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	Discount      float64            `bson:"discount,omitempty" json:"discount,omitempty"`
	ShippingFee   float64            `bson:"shipping_fee,omitempty" json:"shipping_fee,omitempty"`
	PaidAmount    float64            `bson:"paid_amount" json:"paid_amount"`
	DebtAmount    float64            `bson:"debt_amount" json:"debt_amount"`
	PaymentStatus string             `bson:"payment_status" json:"payment_status"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	Origin        string             `bson:"origin" json:"origin"`
	Reference     string             `bson:"reference" json:"reference"` // unique per creation attempt
	DisplayNumber string             `bson:"display_number" json:"display_number"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// OrderItem snapshots product name and price at order time.
type OrderItem struct {
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	Quantity    float64            `bson:"quantity" json:"quantity"`
	UnitPrice   float64            `bson:"unit_price" json:"unit_price"`
	LineTotal   float64            `bson:"line_total" json:"line_total"`
}

const (
	OrderStatusPending = "pending"

	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusPending = "pending"

	OrderOriginChatbot = "chatbot"
)
