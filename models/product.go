package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is read-only to the order pipeline: stock is read to validate
// sufficiency at order time, never decremented here.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       float64            `bson:"stock" json:"stock"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
