package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Connect opens the MongoDB client and verifies the connection with a
// ping. A failed ping is reported to the caller but is not fatal: the
// server still starts and store-level calls surface 503s until the
// database comes back.
func Connect(uri string) (*mongo.Client, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Printf("Warning: could not create MongoDB client: %v", err)
		return nil, false
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Printf("Warning: MongoDB not reachable at startup: %v", err)
		return client, false
	}

	log.Println("Connected to MongoDB")
	return client, true
}

// EnsureIndexes creates the unique email index and the session TTL
// index. Index creation failures are logged, not fatal.
func EnsureIndexes(client *mongo.Client, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	users := client.Database(dbName).Collection("users")
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("Warning: could not create users email index: %v", err)
	}
}
