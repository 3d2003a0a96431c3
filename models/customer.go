package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is the identity anchor for the order pipeline. The normalized
// phone number is the primary dedup key; platform identities from messaging
// channels are linked into PlatformIdentities, each at most once.
type Customer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"` // normalized, unique
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	FirstName string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Gender    string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`

	// PlatformIdentities maps a short key derived from the identity value to
	// the linked messaging-platform identity.
	PlatformIdentities map[string]PlatformIdentity `bson:"platform_identities,omitempty" json:"platform_identities,omitempty"`

	Balance   float64   `bson:"balance" json:"balance"` // outstanding debt
	Status    string    `bson:"status" json:"status"`
	Origin    string    `bson:"origin" json:"origin"` // e.g. "bot"
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PlatformIdentity is an opaque user identifier issued by an external
// messaging channel, distinct from the customer id.
type PlatformIdentity struct {
	UserID          string    `bson:"user_id" json:"user_id"`
	Label           string    `bson:"label,omitempty" json:"label,omitempty"`
	LastInteraction time.Time `bson:"last_interaction" json:"last_interaction"`
}

const (
	CustomerStatusActive = "active"
	CustomerOriginBot    = "bot"
)
