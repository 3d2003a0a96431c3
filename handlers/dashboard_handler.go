package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-bot/services"
)

// GetCustomers retrieves customers with pagination
func GetCustomers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}
	skip := (page - 1) * limit

	customers, totalCount, err := services.GetCustomers(c.Context(), limit, skip)
	if err != nil {
		slog.Error("Failed to get customers", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve customers",
		})
	}

	totalPages := (int(totalCount) + limit - 1) / limit

	return c.JSON(fiber.Map{
		"customers": customers,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       totalCount,
			"total_pages": totalPages,
			"has_more":    page < totalPages,
		},
	})
}

// SearchCustomers searches customers by name or phone
func SearchCustomers(c *fiber.Ctx) error {
	searchTerm := c.Query("q")
	if searchTerm == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter q is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}

	customers, err := services.SearchCustomers(c.Context(), searchTerm, limit)
	if err != nil {
		slog.Error("Failed to search customers", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search customers",
		})
	}

	return c.JSON(fiber.Map{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetOrders retrieves orders with pagination
func GetOrders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}
	skip := (page - 1) * limit

	orders, totalCount, err := services.GetOrders(c.Context(), limit, skip)
	if err != nil {
		slog.Error("Failed to get orders", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve orders",
		})
	}

	totalPages := (int(totalCount) + limit - 1) / limit

	return c.JSON(fiber.Map{
		"orders": orders,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       totalCount,
			"total_pages": totalPages,
			"has_more":    page < totalPages,
		},
	})
}

// Swappable so the handler's status mapping is testable without a
// datastore.
var (
	orderByID    = services.GetOrderByID
	customerByID = services.GetCustomerByID
)

// GetOrderDetails retrieves a single order together with its customer
func GetOrderDetails(c *fiber.Ctx) error {
	orderID, err := primitive.ObjectIDFromHex(c.Params("orderID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	order, err := orderByID(c.Context(), orderID)
	if err != nil {
		slog.Error("Failed to get order", "orderID", orderID.Hex(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve order",
		})
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Order not found",
		})
	}

	customer, err := customerByID(c.Context(), order.CustomerID)
	if err != nil {
		// The order itself is the payload; a customer read failure only
		// degrades the detail view.
		slog.Warn("Failed to get order customer", "orderID", orderID.Hex(), "error", err)
		customer = nil
	}

	return c.JSON(fiber.Map{
		"order":    order,
		"customer": customer,
	})
}

// GetConversation retrieves the conversation for a session
func GetConversation(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session id is required",
		})
	}

	conversation, err := services.GetConversationBySession(c.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to get conversation", "sessionID", sessionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve conversation",
		})
	}
	if conversation == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	}

	return c.JSON(conversation)
}
