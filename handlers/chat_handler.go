package handlers

import (
	"log/slog"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"shop-bot/models"
	"shop-bot/services"
)

type ChatRequest struct {
	Message string                 `json:"message"`
	Sender  string                 `json:"sender"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type ChatResponse struct {
	Responses      []services.Reply `json:"responses"`
	ConversationID string           `json:"conversation_id"`
}

// validateChatRequest enforces the gateway's input bounds. Lengths are
// counted in characters, not bytes, so multi-byte Vietnamese text gets the
// full advertised limits.
func validateChatRequest(req ChatRequest) string {
	if n := utf8.RuneCountInString(req.Message); n == 0 || n > 4000 {
		return "Message must be between 1 and 4000 characters"
	}
	if n := utf8.RuneCountInString(req.Sender); n == 0 || n > 255 {
		return "Sender must be between 1 and 255 characters"
	}
	return ""
}

// HandleChatMessage processes one inbound conversational message: it lazily
// creates the conversation, records the user turn, runs the intent
// dispatcher, and records the bot's reply.
func HandleChatMessage(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := validateChatRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	ctx := c.Context()

	senderName, _ := req.Context["name"].(string)
	conversation, err := services.GetOrCreateConversation(ctx, req.Sender, senderName)
	if err != nil {
		slog.Error("Failed to load conversation", "sender", req.Sender, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	if err := services.AppendTurn(ctx, conversation.ID, models.Turn{
		Role:     models.TurnRoleUser,
		Text:     req.Message,
		Metadata: req.Context,
	}); err != nil {
		slog.Error("Failed to record user turn", "conversationID", conversation.ID.Hex(), "error", err)
	}

	intent, reply, err := services.DispatchIntent(ctx, req.Message, services.IntentDeps{
		Search:   services.SearchProducts,
		Cheapest: services.CheapestProducts,
	})
	if err != nil {
		slog.Error("Intent handler failed", "intent", intent, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	slog.Info("Chat message handled",
		"conversationID", conversation.ID.Hex(),
		"intent", intent,
		"messageLength", len(req.Message),
	)

	if err := services.AppendTurn(ctx, conversation.ID, models.Turn{
		Role: models.TurnRoleBot,
		Text: reply.Text,
		Metadata: map[string]interface{}{
			"intent": intent,
		},
	}); err != nil {
		slog.Error("Failed to record bot turn", "conversationID", conversation.ID.Hex(), "error", err)
	}

	return c.JSON(ChatResponse{
		Responses:      []services.Reply{reply},
		ConversationID: conversation.ID.Hex(),
	})
}
