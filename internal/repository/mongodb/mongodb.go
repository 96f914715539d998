// Package mongodb stores invitations and payments as MongoDB documents.
//
// Documents are keyed by ObjectIDs, whose 24-hex form sorts chronologically
// and doubles as the paging cursor.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	InvitationsCollection = "invitations"
	PaymentsCollection    = "payments"
)

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(InvitationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isDeleted", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create invitations owner index: %w", err)
	}

	payments := db.Collection(PaymentsCollection)
	_, err = payments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "referenceNumber", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
		{
			Keys: bson.D{{Key: "usedBy", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create payments indexes: %w", err)
	}
	return nil
}

// IsObjectID reports whether s is a well-formed 24-hex ObjectID.
func IsObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// CursorValidator narrows match to identifiers the repositories can decode.
// A nil match accepts any ObjectID.
func CursorValidator(match func(string) bool) func(string) bool {
	return func(s string) bool {
		if match != nil && !match(s) {
			return false
		}
		return IsObjectID(s)
	}
}
