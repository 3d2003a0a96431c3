package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"shop-bot/models"
)

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares a plaintext password against a stored hash
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// CreateUser creates a new administrative user
func CreateUser(ctx context.Context, username, email, password, role string) (*models.User, error) {
	collection := GetDatabase().Collection("users")

	existing := collection.FindOne(ctx, bson.M{"username": username})
	if existing.Err() != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("user already exists with username %s", username)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User created", "userID", user.ID.Hex(), "username", username, "role", role)
	return user, nil
}

// EnsureAdminUser creates the administrative account at boot when it does
// not exist yet. A no-op when the username is already taken.
func EnsureAdminUser(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	existing, err := GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = CreateUser(ctx, username, "", password, models.RoleAdmin)
	return err
}

// GetUserByUsername retrieves an active user by username
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	collection := GetDatabase().Collection("users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{
		"username":  username,
		"is_active": true,
	}).Decode(&user)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
