package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-bot/models"
)

// GetConversationBySession retrieves a conversation by its session id.
// Returns nil without error when none exists yet.
func GetConversationBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	collection := GetDatabase().Collection("conversations")

	var conversation models.Conversation
	err := collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "conversation lookup", Err: err}
	}

	return &conversation, nil
}

// GetOrCreateConversation finds the conversation for a session, creating it
// lazily on the first message.
func GetOrCreateConversation(ctx context.Context, sessionID, senderName string) (*models.Conversation, error) {
	conversation, err := GetConversationBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	now := time.Now()
	conversation = &models.Conversation{
		ID:         primitive.NewObjectID(),
		SessionID:  sessionID,
		SenderName: senderName,
		Turns:      []models.Turn{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	collection := GetDatabase().Collection("conversations")
	if _, err := collection.InsertOne(ctx, conversation); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return GetConversationBySession(ctx, sessionID)
		}
		return nil, &PersistenceError{Op: "conversation create", Err: err}
	}

	return conversation, nil
}

// AppendTurn appends a turn to a conversation.
func AppendTurn(ctx context.Context, conversationID primitive.ObjectID, turn models.Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	collection := GetDatabase().Collection("conversations")
	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{
			"$push": bson.M{"turns": turn},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return &PersistenceError{Op: "conversation append", Err: err}
	}
	return nil
}

// LinkConversationCustomer ties a conversation to a resolved customer.
func LinkConversationCustomer(ctx context.Context, conversationID, customerID primitive.ObjectID) error {
	collection := GetDatabase().Collection("conversations")
	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"customer_id": customerID, "updated_at": time.Now()}},
	)
	if err != nil {
		return &PersistenceError{Op: "conversation link", Err: err}
	}
	return nil
}

// RecentConversations returns the most recently active conversations, used
// by passive identity discovery and the dashboard.
func RecentConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	collection := GetDatabase().Collection("conversations")

	findOptions := options.Find().
		SetSort(bson.M{"updated_at": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, &PersistenceError{Op: "conversation scan", Err: err}
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, &PersistenceError{Op: "conversation scan", Err: err}
	}

	return conversations, nil
}

// ConversationsByCustomer returns all conversations linked to a customer.
func ConversationsByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Conversation, error) {
	collection := GetDatabase().Collection("conversations")

	findOptions := options.Find().SetSort(bson.M{"updated_at": -1})
	cursor, err := collection.Find(ctx, bson.M{"customer_id": customerID}, findOptions)
	if err != nil {
		return nil, &PersistenceError{Op: "conversation scan", Err: err}
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, &PersistenceError{Op: "conversation scan", Err: err}
	}

	return conversations, nil
}
