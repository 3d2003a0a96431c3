package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	mongoClient *mongo.Client
	database    *mongo.Database
)

// GetDatabase returns the MongoDB database instance
func GetDatabase() *mongo.Database {
	return database
}

// InitMongoDB initializes MongoDB connection
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	mongoClient = client

	return client, nil
}

// InitServices initializes all services
func InitServices(client *mongo.Client, databaseName string) {
	database = client.Database(databaseName)

	createIndexes()
}

// createIndexes creates necessary database indexes
func createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Customers: phone is the primary dedup key
	customersCollection := database.Collection("customers")
	customersCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"phone": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"name": 1}},
		{Keys: bson.M{"updated_at": -1}},
	})

	// Orders: reference is unique per creation attempt
	ordersCollection := database.Collection("orders")
	ordersCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"reference": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"customer_id": 1}},
		{Keys: bson.M{"created_at": -1}},
	})

	// Conversations: one per session
	conversationsCollection := database.Collection("conversations")
	conversationsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"session_id": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"customer_id": 1}},
		{Keys: bson.M{"updated_at": -1}},
	})

	// Products: lookups by name for the chat search intents
	productsCollection := database.Collection("products")
	productsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"name": 1}},
	})

	// Sessions
	sessionsCollection := database.Collection("sessions")
	sessionsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"session_id": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"expires_at": 1}},
	})

	// Users
	usersCollection := database.Collection("users")
	usersCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true),
	})
}
