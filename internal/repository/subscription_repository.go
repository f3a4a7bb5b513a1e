package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushq/campus-api/internal/models"
)

// SubscriptionRepository keeps push subscription documents. A user may hold
// several, one per browser or device.
type SubscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{collection: db.Collection("push_subscriptions")}
}

// Save upserts a subscription keyed by (user, endpoint) so re-registration
// from the same browser does not duplicate.
func (r *SubscriptionRepository) Save(ctx context.Context, sub *models.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	filter := bson.M{"user_id": sub.UserID, "endpoint": sub.Endpoint}
	update := bson.M{"$set": sub}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

// ListByUser returns every registered endpoint for a user.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}

// ListByUsers returns every endpoint for a set of users in one round trip.
func (r *SubscriptionRepository) ListByUsers(ctx context.Context, userIDs []string) ([]models.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}

// Remove deletes one endpoint for a user, typically on push failure or
// explicit unsubscribe.
func (r *SubscriptionRepository) Remove(ctx context.Context, userID, endpoint string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "endpoint": endpoint}); err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}
	return nil
}
