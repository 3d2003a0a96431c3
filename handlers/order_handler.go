package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shop-bot/config"
	"shop-bot/services"
)

type BotOrderRequest struct {
	Phone       string                      `json:"phone"`
	Name        string                      `json:"name"`
	Address     string                      `json:"address,omitempty"`
	Items       []services.OrderLineRequest `json:"items"`
	Discount    float64                     `json:"discount,omitempty"`
	ShippingFee float64                     `json:"shipping_fee,omitempty"`
	PaidAmount  float64                     `json:"paid_amount,omitempty"`

	// Platform-identity hints, tried in priority order.
	PlatformID string                 `json:"platform_id,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	SessionID  string                 `json:"session_id,omitempty"`
	SenderID   string                 `json:"sender_id,omitempty"`
}

type BotOrderResponse struct {
	OrderID       string  `json:"order_id"`
	DisplayNumber string  `json:"display_number"`
	Total         float64 `json:"total"`
	PaidAmount    float64 `json:"paid_amount"`
	DebtAmount    float64 `json:"debt_amount"`
	Message       string  `json:"message"`
}

// CreateBotOrder runs the conversational order pipeline: resolve the
// customer, validate and price the items, apply the credit policy, persist
// the order, then dispatch the invoice without delaying the response.
func CreateBotOrder(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req BotOrderRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
			})
		}

		if req.Phone == "" {
			return orderError(c, &services.ValidationError{Field: "phone", Reason: "required"})
		}
		if req.Name == "" {
			return orderError(c, &services.ValidationError{Field: "name", Reason: "required"})
		}
		if len(req.Items) == 0 {
			return orderError(c, &services.ValidationError{Field: "items", Reason: "required"})
		}

		ctx := c.Context()
		phone := services.NormalizePhone(req.Phone)

		resolved, err := services.ResolveCustomer(ctx, phone, req.Name, services.IdentityHints{
			PlatformID: req.PlatformID,
			Context:    req.Context,
			SessionID:  req.SessionID,
			SenderID:   req.SenderID,
			Label:      req.Name,
		})
		if err != nil {
			return orderError(c, err)
		}
		customer := resolved.Customer

		// Validation order matters: existence, then stock, then credit, and
		// only then the write.
		items, subtotal, err := services.ValidateItems(ctx, req.Items, services.GetProductByID)
		if err != nil {
			return orderError(c, err)
		}

		totals := services.ComputeTotals(subtotal, req.Discount, req.ShippingFee, req.PaidAmount)
		if err := services.CheckCredit(customer.Balance, totals.Total, cfg.CreditCeiling); err != nil {
			return orderError(c, err)
		}

		order, err := services.WriteOrder(ctx, customer.ID, items, totals, req.Address)
		if err != nil {
			return orderError(c, err)
		}

		if err := services.AddCustomerDebt(ctx, customer.ID, order.DebtAmount); err != nil {
			slog.Error("Failed to update customer balance", "orderID", order.ID.Hex(), "error", err)
		}
		if req.Address != "" {
			if err := services.FillEmptyProfileFields(ctx, customer, map[string]string{"address": req.Address}); err != nil {
				slog.Warn("Failed to backfill customer address", "customerID", customer.ID.Hex(), "error", err)
			}
		}

		message := fmt.Sprintf("Order %s created, total %.2f", order.DisplayNumber, order.Total)
		if resolved.PlatformID == "" {
			message += " (no linked messaging account, invoice not sent)"
		}

		// Invoice delivery is fire-and-forget: it starts after the response
		// is prepared and the request does not wait for it.
		services.DispatchInvoice(order, resolved.PlatformID, func(sendCtx context.Context, recipientID, text string) error {
			return services.SendPlatformMessage(sendCtx, cfg.PlatformSendURL, cfg.PlatformAccessToken, recipientID, text)
		})

		return c.Status(fiber.StatusCreated).JSON(BotOrderResponse{
			OrderID:       order.ID.Hex(),
			DisplayNumber: order.DisplayNumber,
			Total:         order.Total,
			PaidAmount:    order.PaidAmount,
			DebtAmount:    order.DebtAmount,
			Message:       message,
		})
	}
}

// orderError maps the pipeline error taxonomy onto HTTP statuses. Every
// business-rule rejection keeps its specific, customer-facing message;
// vague wording is reserved for unexpected internal failures.
func orderError(c *fiber.Ctx, err error) error {
	var (
		validationErr  *services.ValidationError
		notFoundErr    *services.ProductNotFoundError
		stockErr       *services.InsufficientStockError
		creditErr      *services.CreditLimitExceededError
		persistenceErr *services.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFoundErr.Error()})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": stockErr.Error()})
	case errors.As(err, &creditErr):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"message": creditErr.Error()})
	case errors.As(err, &persistenceErr):
		slog.Error("Order pipeline persistence failure", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong, please try again later"})
	default:
		slog.Error("Order pipeline unexpected failure", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong, please try again later"})
	}
}
