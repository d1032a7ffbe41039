// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
	CategorySync  = "sync"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventLogout                   = "logout"
	EventPasswordChanged          = "password_changed"
)

// Admin event types
const (
	EventUserCreated    = "user_created"
	EventUserUpdated    = "user_updated"
	EventUserDisabled   = "user_disabled"
	EventUserEnabled    = "user_enabled"
	EventRoleChanged    = "role_changed"
	EventGoalAssigned   = "goal_assigned"
	EventGoalUpdated    = "goal_updated"
	EventGoalDeleted    = "goal_deleted"
	EventContractStatus = "contract_status_changed"
)

// Sync event types
const (
	EventSyncStarted  = "sync_started"
	EventSyncFinished = "sync_finished"
	EventSyncFailed   = "sync_failed"
)

// Event is one audit record. Actor identity is denormalized so entries
// stay readable after the actor is renamed or deleted.
type Event struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	At time.Time          `bson:"at" json:"at"`

	Category string `bson:"category" json:"category"`
	Action   string `bson:"action" json:"action"`

	ActorID    *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorEmail string              `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	ActorRole  string              `bson:"actor_role,omitempty" json:"actor_role,omitempty"`

	// TargetID is the user, goal, or contract the action applied to.
	TargetID *primitive.ObjectID `bson:"target_id,omitempty" json:"target_id,omitempty"`

	IP            string `bson:"ip,omitempty" json:"ip,omitempty"`
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for listing audit events.
type QueryFilter struct {
	ActorID   *primitive.ObjectID
	TargetID  *primitive.ObjectID
	Category  string
	Action    string
	Failed    bool // only unsuccessful events
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.ActorID != nil {
		q["actor_id"] = f.ActorID
	}
	if f.TargetID != nil {
		q["target_id"] = f.TargetID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.Failed {
		q["success"] = false
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["at"] = tq
	}
	return q
}

// Store manages audit records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}

// GetFailedLogins retrieves recent failed login attempts, for abuse review.
func (s *Store) GetFailedLogins(ctx context.Context, since time.Time, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{
		Category:  CategoryAuth,
		Failed:    true,
		StartTime: &since,
		Limit:     limit,
	})
}
