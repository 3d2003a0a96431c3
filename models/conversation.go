package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is created lazily on the first message of a session and
// grows by appending turns. It is never deleted by the bot.
type Conversation struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SessionID  string              `bson:"session_id" json:"session_id"`
	CustomerID *primitive.ObjectID `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	SenderName string              `bson:"sender_name,omitempty" json:"sender_name,omitempty"`
	Turns      []Turn              `bson:"turns" json:"turns"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

// Turn is a single message within a conversation.
type Turn struct {
	Role      string                 `bson:"role" json:"role"` // "user" or "bot"
	Text      string                 `bson:"text" json:"text"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}

const (
	TurnRoleUser = "user"
	TurnRoleBot  = "bot"
)
