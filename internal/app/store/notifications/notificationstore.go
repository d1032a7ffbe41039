package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/vendaops/contratohub/internal/app/system/normalize"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no notification matches the lookup.
var ErrNotFound = errors.New("notification not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Create inserts an unread notification for userID.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, message, link string) (models.Notification, error) {
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   normalize.Text(message),
		Link:      link,
		CreatedAt: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ListForUser returns a user's notifications, newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns how many unread notifications a user has.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

// MarkRead marks one notification read. The user filter keeps a user from
// acking someone else's notification by guessing its id.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every notification of a user read.
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
