package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shop-bot/models"
	"shop-bot/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	user, err := services.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		slog.Error("Failed to get user", "error", err, "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := services.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		slog.Info("Invalid password attempt", "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	session, err := services.CreateSession(
		c.Context(),
		user.ID.Hex(),
		user.Username,
		user.Email,
		user.Role,
		c.IP(),
		c.Get("User-Agent"),
	)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    session.SessionID,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	slog.Info("User logged in", "user_id", user.ID.Hex(), "username", user.Username)

	return c.JSON(LoginResponse{
		Message: "Login successful",
		User:    user,
	})
}

func Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID != "" {
		if err := services.InvalidateSession(c.Context(), sessionID); err != nil {
			slog.Error("Failed to invalidate session", "error", err)
		}
	}

	c.ClearCookie(services.SessionCookieName)

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

func GetCurrentUser(c *fiber.Ctx) error {
	sessionID := c.Cookies(services.SessionCookieName)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	session, err := services.GetSessionByID(c.Context(), sessionID)
	if err != nil || session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired session",
		})
	}

	return c.JSON(fiber.Map{
		"user_id":  session.UserID,
		"username": session.Username,
		"email":    session.Email,
		"role":     session.Role,
	})
}
