package services

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-bot/models"
)

// The product catalog is owned by the admin CRUD layer; the bot only reads
// it. The lookup and search functions are passed around as values so the
// validator and intent handlers can be exercised without a database.

// ProductLookup fetches a product by id. Returns nil without error when the
// product does not exist.
type ProductLookup func(ctx context.Context, id string) (*models.Product, error)

// ProductSearch finds products whose name or description contains the term,
// case-insensitive.
type ProductSearch func(ctx context.Context, term string, limit int) ([]models.Product, error)

// GetProductByID retrieves a product by its hex object id.
func GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not a valid id, so no such product.
		return nil, nil
	}

	collection := GetDatabase().Collection("products")

	var product models.Product
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "product lookup", Err: err}
	}

	return &product, nil
}

// substringFilter matches name or description containing the term as a
// literal, case-insensitive substring. Terms come from chat text, so regex
// metacharacters must never reach $regex unescaped.
func substringFilter(term string) []bson.M {
	pattern := regexp.QuoteMeta(term)
	return []bson.M{
		{"name": bson.M{"$regex": pattern, "$options": "i"}},
		{"description": bson.M{"$regex": pattern, "$options": "i"}},
	}
}

// SearchProducts finds products matching the term by name or description.
func SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error) {
	collection := GetDatabase().Collection("products")

	filter := bson.M{"$or": substringFilter(term)}

	findOptions := options.Find().
		SetSort(bson.M{"name": 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, &PersistenceError{Op: "product search", Err: err}
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, &PersistenceError{Op: "product search", Err: err}
	}

	return products, nil
}

// CheapestProducts returns up to limit products sorted by ascending price,
// optionally restricted to a search term.
func CheapestProducts(ctx context.Context, term string, limit int) ([]models.Product, error) {
	collection := GetDatabase().Collection("products")

	filter := bson.M{}
	if term != "" {
		filter["$or"] = substringFilter(term)
	}

	findOptions := options.Find().
		SetSort(bson.M{"price": 1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, &PersistenceError{Op: "product search", Err: err}
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, &PersistenceError{Op: "product search", Err: err}
	}

	return products, nil
}
