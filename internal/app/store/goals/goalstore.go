package goalstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/vendaops/contratohub/internal/app/system/normalize"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no goal matches the lookup.
	ErrNotFound = errors.New("goal not found")
	// ErrDuplicateGoal is returned when the assignee already has a goal of
	// this type for the period.
	ErrDuplicateGoal = errors.New("user already has a goal of this type for the period")

	errBadType   = errors.New(`goal type must be "value"|"count"`)
	errBadTarget = errors.New("goal target must be positive")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("goals")}
}

func validType(t string) bool {
	return t == models.GoalTypeValue || t == models.GoalTypeCount
}

// GetByID loads a goal by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var g models.Goal
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts a goal for assignee, snapshotting their locality so the
// goal stays readable under the scope it was assigned in.
func (s *Store) Create(ctx context.Context, g models.Goal, assignee models.User) (models.Goal, error) {
	if !validType(g.Type) {
		return models.Goal{}, errBadType
	}
	if g.Target <= 0 {
		return models.Goal{}, errBadTarget
	}

	g.ID = primitive.NewObjectID()
	g.UserID = assignee.ID
	g.Description = normalize.Text(g.Description)
	g.Current = 0
	g.City = assignee.City
	g.State = assignee.State
	g.Region = assignee.Region

	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Goal{}, ErrDuplicateGoal
		}
		return models.Goal{}, err
	}
	return g, nil
}

// Update holds the editable goal fields.
type Update struct {
	Description string
	Target      float64
}

// UpdateGoal rewrites a goal's description and target.
func (s *Store) UpdateGoal(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if upd.Target <= 0 {
		return errBadTarget
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"description": normalize.Text(upd.Description),
		"target":      upd.Target,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProgress overwrites a goal's current progress. Used by the sync
// worker after recomputing production for the period.
func (s *Store) SetProgress(ctx context.Context, id primitive.ObjectID, current float64) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"current":    current,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddProgress increments a goal's current progress, for incremental
// contract ingestion.
func (s *Store) AddProgress(ctx context.Context, id primitive.ObjectID, delta float64) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"current": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a goal.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Find returns goals within pred, optionally limited to one period,
// newest period first.
func (s *Store) Find(ctx context.Context, pred scope.Predicate, period string, opts *options.FindOptions) ([]models.Goal, error) {
	filter := pred.BSON()
	if period != "" {
		filter = scope.And(pred, scope.Eq("period", period)).BSON()
	}
	if opts == nil {
		opts = options.Find()
	}
	if opts.Sort == nil {
		opts.SetSort(bson.D{{Key: "period", Value: -1}, {Key: "_id", Value: 1}})
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Goal
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByUser returns one user's goals for a period ("" for all periods).
func (s *Store) FindByUser(ctx context.Context, userID primitive.ObjectID, period string) ([]models.Goal, error) {
	return s.Find(ctx, scope.Eq("user_id", userID), period, nil)
}

// ActiveForUser returns the user's goals whose period covers the given
// time, for progress accounting during contract ingestion.
func (s *Store) ActiveForUser(ctx context.Context, userID primitive.ObjectID, at time.Time) ([]models.Goal, error) {
	return s.FindByUser(ctx, userID, at.UTC().Format("2006-01"))
}
