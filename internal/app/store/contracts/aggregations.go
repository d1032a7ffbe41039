package contractstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendaops/contratohub/internal/app/system/scope"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrBadDimension is returned when CountsBy is asked to group on a field
// that is not an approved grouping dimension.
var ErrBadDimension = errors.New("unknown grouping dimension")

// activeExpr matches the statuses that count toward production KPIs.
var activeExpr = bson.M{"$in": bson.A{"$status", bson.A{"pago", "pendente"}}}

// KPIs are the dashboard headline numbers. TotalValue and AverageTicket
// count only active (pago/pendente) contracts; cancelled contracts appear
// in TotalContracts but contribute no value.
type KPIs struct {
	TotalContracts  int64   `json:"total_contracts"`
	ActiveContracts int64   `json:"active_contracts"`
	TotalValue      float64 `json:"total_value"`
	AverageTicket   float64 `json:"average_ticket"`
}

// FetchKPIs computes the headline numbers within pred narrowed by filters.
func (s *Store) FetchKPIs(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters) (KPIs, error) {
	pipeline := []bson.M{
		{"$match": matchFilter(pred, filters)},
		{"$group": bson.M{
			"_id":    nil,
			"total":  bson.M{"$sum": 1},
			"active": bson.M{"$sum": bson.M{"$cond": bson.A{activeExpr, 1, 0}}},
			"value":  bson.M{"$sum": bson.M{"$cond": bson.A{activeExpr, "$value", 0}}},
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return KPIs{}, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total  int64   `bson:"total"`
		Active int64   `bson:"active"`
		Value  float64 `bson:"value"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return KPIs{}, err
		}
	}
	if err := cur.Err(); err != nil {
		return KPIs{}, err
	}

	out := KPIs{
		TotalContracts:  row.Total,
		ActiveContracts: row.Active,
		TotalValue:      row.Value,
	}
	if row.Active > 0 {
		out.AverageTicket = row.Value / float64(row.Active)
	}
	return out, nil
}

// MonthlyPoint is one month of production, keyed "YYYY-MM".
type MonthlyPoint struct {
	Month string  `bson:"_id" json:"month"`
	Value float64 `bson:"value" json:"value"`
	Count int64   `bson:"count" json:"count"`
}

// MonthlyProduction groups active contracts by month, oldest first.
func (s *Store) MonthlyProduction(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters) ([]MonthlyPoint, error) {
	pipeline := []bson.M{
		{"$match": matchFilter(pred, filters)},
		{"$match": bson.M{"status": bson.M{"$in": bson.A{"pago", "pendente"}}}},
		{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$date"}},
			"value": bson.M{"$sum": "$value"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}
	return aggregateInto[MonthlyPoint](ctx, s.c, pipeline)
}

// groupDimensions whitelists CountsBy fields. Grouping on anything else
// (user_id, client_cpf) would leak data across scope boundaries in the
// labels themselves.
var groupDimensions = map[string]bool{
	"status":       true,
	"promotora":    true,
	"tabela":       true,
	"tipo_empresa": true,
	"region":       true,
	"state":        true,
	"city":         true,
}

// DimensionCount is one slice of a share chart.
type DimensionCount struct {
	Label string  `bson:"_id" json:"label"`
	Count int64   `bson:"count" json:"count"`
	Value float64 `bson:"value" json:"value"`
}

// CountsBy groups the scoped contracts by one dimension, largest count
// first. Empty labels are reported as "(vazio)".
func (s *Store) CountsBy(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters, dimension string) ([]DimensionCount, error) {
	if !groupDimensions[dimension] {
		return nil, fmt.Errorf("%w: %q", ErrBadDimension, dimension)
	}
	pipeline := []bson.M{
		{"$match": matchFilter(pred, filters)},
		{"$group": bson.M{
			"_id":   bson.M{"$ifNull": bson.A{"$" + dimension, "(vazio)"}},
			"count": bson.M{"$sum": 1},
			"value": bson.M{"$sum": "$value"},
		}},
		{"$sort": bson.M{"count": -1, "_id": 1}},
	}
	return aggregateInto[DimensionCount](ctx, s.c, pipeline)
}

// RankedPromoter is one row of the promoter ranking.
type RankedPromoter struct {
	Promotora  string  `bson:"_id" json:"promotora"`
	Contracts  int64   `bson:"count" json:"contracts"`
	TotalValue float64 `bson:"value" json:"total_value"`
}

// PromoterRanking ranks promotoras by active production value within pred.
func (s *Store) PromoterRanking(ctx context.Context, pred scope.Predicate, filters scope.ContractFilters, limit int) ([]RankedPromoter, error) {
	if limit <= 0 {
		limit = 10
	}
	pipeline := []bson.M{
		{"$match": matchFilter(pred, filters)},
		{"$match": bson.M{
			"status":    bson.M{"$in": bson.A{"pago", "pendente"}},
			"promotora": bson.M{"$nin": bson.A{nil, ""}},
		}},
		{"$group": bson.M{
			"_id":   "$promotora",
			"count": bson.M{"$sum": 1},
			"value": bson.M{"$sum": "$value"},
		}},
		{"$sort": bson.M{"value": -1, "_id": 1}},
		{"$limit": limit},
	}
	return aggregateInto[RankedPromoter](ctx, s.c, pipeline)
}

func aggregateInto[T any](ctx context.Context, c *mongo.Collection, pipeline []bson.M) ([]T, error) {
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
