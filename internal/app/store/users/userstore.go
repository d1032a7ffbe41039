package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/vendaops/contratohub/internal/app/system/autherrors"
	"github.com/vendaops/contratohub/internal/app/system/normalize"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/app/system/status"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	ErrBadStatus      = errors.New(`status must be "active"|"disabled"`)
	ErrLocalityNeeded = fmt.Errorf("%w: role requires region, state, or city", autherrors.ErrMissingLocality)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FetchByID implements auth.ProfileFetcher. A missing user is not an
// error: the middleware falls back to the token's own claims, so only
// real database failures surface as errors here.
func (s *Store) FetchByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// Create inserts a new user after normalizing and validating fields.
// The role must parse, and locality-scoped roles must carry the attribute
// their scope level filters on, otherwise every query they run would
// resolve to deny-all.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Nome = normalize.Name(u.Nome)
	u.NomeCI = text.Fold(u.Nome)
	u.Email = normalize.Email(u.Email)
	u.City = normalize.Name(u.City)
	u.State = normalize.Name(u.State)
	u.Region = normalize.Name(u.Region)
	if u.Status == "" {
		u.Status = status.Active
	}

	role, err := roles.Parse(u.Role)
	if err != nil {
		return models.User{}, err
	}
	u.Role = string(role)

	if !status.IsValid(u.Status) {
		return models.User{}, ErrBadStatus
	}

	switch role {
	case roles.Superintendencia:
		if u.Region == "" {
			return models.User{}, ErrLocalityNeeded
		}
	case roles.GerenciaRegional:
		if u.State == "" {
			return models.User{}, ErrLocalityNeeded
		}
	case roles.Comercial:
		if u.City == "" {
			return models.User{}, ErrLocalityNeeded
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListQuery bounds a user listing. Roles and Locality come from
// userpolicy.ForList; Search matches a folded name prefix.
type ListQuery struct {
	Roles    []roles.Role
	Locality scope.Predicate
	Status   string
	Search   string
}

func (q ListQuery) filter() bson.M {
	f := bson.M{}
	if len(q.Roles) > 0 {
		rs := make([]string, len(q.Roles))
		for i, r := range q.Roles {
			rs[i] = string(r)
		}
		f["role"] = bson.M{"$in": rs}
	}
	if q.Status != "" {
		f["status"] = q.Status
	}
	if q.Search != "" {
		f["nome_ci"] = bson.M{"$regex": "^" + text.Fold(q.Search)}
	}
	if !q.Locality.IsAll() {
		return bson.M{"$and": bson.A{f, q.Locality.BSON()}}
	}
	return f
}

// Find returns users matching q, sorted by folded name. opts may add
// cursor bounds and limits on top of the query filter.
func (s *Store) Find(ctx context.Context, q ListQuery, opts *options.FindOptions) ([]models.User, error) {
	return s.FindPage(ctx, q, nil, opts)
}

// FindPage is Find with an extra keyset window from the paging layer,
// conjoined onto the query filter so a cursor can never widen the scope.
func (s *Store) FindPage(ctx context.Context, q ListQuery, window bson.M, opts *options.FindOptions) ([]models.User, error) {
	if opts == nil {
		opts = options.Find()
	}
	if opts.Sort == nil {
		opts.SetSort(bson.D{{Key: "nome_ci", Value: 1}, {Key: "_id", Value: 1}})
	}
	filter := q.filter()
	if window != nil {
		filter = bson.M{"$and": bson.A{filter, window}}
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many users match q.
func (s *Store) Count(ctx context.Context, q ListQuery) (int64, error) {
	return s.c.CountDocuments(ctx, q.filter())
}

// UpdateRole sets the user's role and bumps their token epoch so identity
// tokens issued under the old role stop verifying.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, newRole roles.Role) error {
	if !roles.IsValid(newRole) {
		return roles.ErrUnknownRole
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"role": string(newRole), "updated_at": time.Now()},
		"$inc": bson.M{"token_epoch": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus enables or disables a user. Disabling also bumps the token
// epoch so outstanding sessions die immediately.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, newStatus string) error {
	if !status.IsValid(newStatus) {
		return ErrBadStatus
	}
	upd := bson.M{"$set": bson.M{"status": newStatus, "updated_at": time.Now()}}
	if newStatus == status.Disabled {
		upd["$inc"] = bson.M{"token_epoch": 1}
	}
	res, err := s.c.UpdateByID(ctx, id, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Nome   string
	City   string
	State  string
	Region string
}

// UpdateProfile rewrites a user's name and locality attributes.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	nome := normalize.Name(upd.Nome)
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"nome":       nome,
		"nome_ci":    text.Fold(nome),
		"city":       normalize.Name(upd.City),
		"state":      normalize.Name(upd.State),
		"region":     normalize.Name(upd.Region),
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

// SetPassword stores a new bcrypt hash for the user.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Assignable lists active users in the given roles and locality, for the
// goal-assignment picker. Capped because the picker is not paged.
func (s *Store) Assignable(ctx context.Context, rs []roles.Role, locality scope.Predicate) ([]models.User, error) {
	q := ListQuery{Roles: rs, Locality: locality, Status: status.Active}
	opts := options.Find().SetLimit(500)
	return s.Find(ctx, q, opts)
}
