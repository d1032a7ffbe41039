package contractstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/vendaops/contratohub/internal/app/system/normalize"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no contract matches the lookup.
	ErrNotFound = errors.New("contract not found")

	ErrBadStatus = errors.New(`status must be "pago"|"pendente"|"cancelado"`)
	errNoOwner   = errors.New("contract requires an owner user_id")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contracts")}
}

func validStatus(s string) bool {
	switch s {
	case models.ContractPago, models.ContractPendente, models.ContractCancelado:
		return true
	}
	return false
}

// GetByID loads a contract by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contract, error) {
	var c models.Contract
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a contract owned by owner, snapshotting the owner's
// locality. The snapshot is what scope predicates filter on; it never
// changes afterward, even if the owner moves.
func (s *Store) Create(ctx context.Context, c models.Contract, owner models.User) (models.Contract, error) {
	if owner.ID == primitive.NilObjectID {
		return models.Contract{}, errNoOwner
	}
	if !validStatus(c.Status) {
		return models.Contract{}, ErrBadStatus
	}

	c.ID = primitive.NewObjectID()
	c.UserID = owner.ID
	c.ClientName = normalize.Name(c.ClientName)
	c.ClientNameCI = text.Fold(c.ClientName)
	c.ClientCPF = normalize.CPF(c.ClientCPF)
	c.City = owner.City
	c.State = owner.State
	c.Region = owner.Region
	if c.Date.IsZero() {
		c.Date = time.Now()
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Contract{}, err
	}
	return c, nil
}

// UpsertResult says what an upsert did, for sync-run accounting.
type UpsertResult int

const (
	UpsertUnchanged UpsertResult = iota
	UpsertCreated
	UpsertUpdated
)

// UpsertExternal inserts or updates a contract keyed by its CRM-side
// external_id. Locality is snapshotted from the owner on insert only.
func (s *Store) UpsertExternal(ctx context.Context, c models.Contract, owner models.User) (UpsertResult, error) {
	if c.ExternalID == "" {
		return UpsertUnchanged, errors.New("external contract requires external_id")
	}
	if !validStatus(c.Status) {
		return UpsertUnchanged, ErrBadStatus
	}

	now := time.Now()
	c.ClientName = normalize.Name(c.ClientName)
	set := bson.M{
		"client_name":    c.ClientName,
		"client_name_ci": text.Fold(c.ClientName),
		"client_cpf":     normalize.CPF(c.ClientCPF),
		"value":          c.Value,
		"date":           c.Date,
		"status":         c.Status,
		"promotora":      c.Promotora,
		"tabela":         c.Tabela,
		"tipo_empresa":   c.TipoEmpresa,
		"updated_at":     now,
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"external_id": c.ExternalID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"user_id":    owner.ID,
				"city":       owner.City,
				"state":      owner.State,
				"region":     owner.Region,
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return UpsertUnchanged, err
	}
	switch {
	case res.UpsertedCount > 0:
		return UpsertCreated, nil
	case res.ModifiedCount > 0:
		return UpsertUpdated, nil
	default:
		return UpsertUnchanged, nil
	}
}

// UpdateStatus moves a contract through its lifecycle.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, newStatus string) error {
	if !validStatus(newStatus) {
		return ErrBadStatus
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": newStatus, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// matchFilter turns a scope predicate plus display filters into the mongo
// filter every read on this collection starts from.
func matchFilter(pred scope.Predicate, filters scope.ContractFilters) bson.D {
	return filters.Apply(pred).BSON()
}

// Find returns contracts within pred narrowed by filters, newest first.
func (s *Store) Find(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters, opts *options.FindOptions) ([]models.Contract, error) {
	return s.FindPage(ctx, pred, filters, nil, opts)
}

// FindPage is Find with an extra keyset window from the paging layer. The
// window is conjoined onto the scoped filter so a cursor can never widen
// what the caller is allowed to see.
func (s *Store) FindPage(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters, window bson.M, opts *options.FindOptions) ([]models.Contract, error) {
	if opts == nil {
		opts = options.Find()
	}
	if opts.Sort == nil {
		opts.SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	}
	filter := matchFilter(pred, filters)
	if window != nil {
		filter = bson.D{{Key: "$and", Value: bson.A{filter, window}}}
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contract
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many contracts fall inside pred narrowed by filters.
func (s *Store) Count(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters) (int64, error) {
	return s.c.CountDocuments(ctx, matchFilter(pred, filters))
}

// FilterOptions are the distinct values present inside the caller's scope,
// used to populate the dashboard filter dropdowns. A user never sees a
// filter value their scope could not match.
type FilterOptions struct {
	Statuses     []string `json:"statuses"`
	Promotoras   []string `json:"promotoras"`
	Tabelas      []string `json:"tabelas"`
	TiposEmpresa []string `json:"tipos_empresa"`
	Regioes      []string `json:"regioes"`
}

// DistinctOptions collects the filter dropdown values within pred.
func (s *Store) DistinctOptions(ctx context.Context, pred scope.Predicate) (FilterOptions, error) {
	filter := pred.BSON()

	distinct := func(field string) ([]string, error) {
		vals, err := s.c.Distinct(ctx, field, filter)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}

	var (
		opts FilterOptions
		err  error
	)
	if opts.Statuses, err = distinct("status"); err != nil {
		return FilterOptions{}, err
	}
	if opts.Promotoras, err = distinct("promotora"); err != nil {
		return FilterOptions{}, err
	}
	if opts.Tabelas, err = distinct("tabela"); err != nil {
		return FilterOptions{}, err
	}
	if opts.TiposEmpresa, err = distinct("tipo_empresa"); err != nil {
		return FilterOptions{}, err
	}
	if opts.Regioes, err = distinct("region"); err != nil {
		return FilterOptions{}, err
	}
	return opts, nil
}
