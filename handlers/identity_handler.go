package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shop-bot/services"
)

type IdentityLinkRequest struct {
	Phone      string `json:"phone"`
	PlatformID string `json:"platform_id"`
	Name       string `json:"name,omitempty"`
}

// LinkIdentity explicitly links a messaging-platform identity to the
// customer with the given phone, creating the customer if needed.
// Idempotent: repeating the call confirms the existing link.
func LinkIdentity(c *fiber.Ctx) error {
	var req IdentityLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone is required",
		})
	}
	if !services.IsValidPlatformID(req.PlatformID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Platform id must be a numeric string of 13-20 digits",
		})
	}

	ctx := c.Context()
	phone := services.NormalizePhone(req.Phone)

	customer, err := services.GetCustomerByPhone(ctx, phone)
	if err != nil {
		slog.Error("Failed to look up customer", "phone", phone, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to link identity",
		})
	}
	if customer == nil {
		customer, err = services.CreateCustomer(ctx, req.Name, phone)
		if err != nil {
			slog.Error("Failed to create customer", "phone", phone, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to link identity",
			})
		}
	}

	linked, err := services.LinkPlatformIdentity(ctx, customer, req.PlatformID, req.Name)
	if err != nil {
		slog.Error("Failed to link identity", "customerID", customer.ID.Hex(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to link identity",
		})
	}

	status := "already_linked"
	if linked {
		status = "linked"
	}

	return c.JSON(fiber.Map{
		"customer_id": customer.ID.Hex(),
		"platform_id": req.PlatformID,
		"status":      status,
	})
}
