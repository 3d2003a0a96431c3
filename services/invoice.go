package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shop-bot/models"
)

// InvoiceSender delivers the confirmation text to a platform identity.
// Injected so the dispatcher can be exercised without a live channel.
type InvoiceSender func(ctx context.Context, recipientID, message string) error

// DispatchInvoice sends an order confirmation to the resolved platform
// identity as a detached goroutine. The caller gets no completion guarantee:
// failures are logged and absorbed, never surfaced, and never roll back the
// order. Order durability must not depend on the messaging channel.
func DispatchInvoice(order *models.Order, platformID string, send InvoiceSender) {
	if platformID == "" {
		slog.Info("Invoice dispatch skipped, no platform identity resolved",
			"orderID", order.ID.Hex())
		return
	}

	message := FormatInvoiceMessage(order)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := send(ctx, platformID, message); err != nil {
			slog.Error("Invoice dispatch failed",
				"orderID", order.ID.Hex(),
				"platformID", platformID,
				"error", err)
			return
		}

		slog.Info("Invoice dispatched",
			"orderID", order.ID.Hex(),
			"platformID", platformID)
	}()
}

// FormatInvoiceMessage renders the confirmation text for an order.
func FormatInvoiceMessage(order *models.Order) string {
	message := fmt.Sprintf("Order %s confirmed!\n", order.DisplayNumber)
	for _, item := range order.Items {
		message += fmt.Sprintf("- %s x%g = %.2f\n", item.ProductName, item.Quantity, item.LineTotal)
	}
	message += fmt.Sprintf("Total: %.2f\nPaid: %.2f\nRemaining: %.2f",
		order.Total, order.PaidAmount, order.DebtAmount)
	return message
}
