// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureContracts(ctx, db); err != nil {
		problems = append(problems, "contracts: "+err.Error())
	}
	if err := ensureGoals(ctx, db); err != nil {
		problems = append(problems, "goals: "+err.Error())
	}
	if err := ensureAuditLogs(ctx, db); err != nil {
		problems = append(problems, "audit_logs: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func loadExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		existing := loadExisting(ctx, coll)

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				continue
			}
			// Name or options mismatch (e.g. upgrading to unique): drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email is the login identity and must be unique.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// User-administration lists: role set + locality filter + name sort.
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "state", Value: 1},
				{Key: "nome_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_state_nomeci_id"),
		},
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "city", Value: 1},
				{Key: "nome_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_city_nomeci_id"),
		},
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "region", Value: 1},
				{Key: "nome_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_region_nomeci_id"),
		},
	})
}

func ensureContracts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("contracts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// CRM-sourced contracts are keyed by external_id; sparse so
		// manually entered contracts don't collide on the missing field.
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_contracts_external"),
		},
		// Operacional scope: own contracts, newest first.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_contracts_user_date"),
		},
		// Locality scopes, each with the default date sort.
		{
			Keys:    bson.D{{Key: "city", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_contracts_city_date"),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_contracts_state_date"),
		},
		{
			Keys:    bson.D{{Key: "region", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_contracts_region_date"),
		},
		// KPI and chart aggregations group on status within a date range.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_contracts_status_date"),
		},
		{
			Keys:    bson.D{{Key: "promotora", Value: 1}},
			Options: options.Index().SetName("idx_contracts_promotora"),
		},
	})
}

func ensureGoals(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("goals")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// A user gets at most one goal of each type per period.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "type", Value: 1},
				{Key: "period", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_goals_user_type_period"),
		},
		{
			Keys:    bson.D{{Key: "city", Value: 1}, {Key: "period", Value: -1}},
			Options: options.Index().SetName("idx_goals_city_period"),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "period", Value: -1}},
			Options: options.Index().SetName("idx_goals_state_period"),
		},
		{
			Keys:    bson.D{{Key: "region", Value: 1}, {Key: "period", Value: -1}},
			Options: options.Index().SetName("idx_goals_region_period"),
		},
	})
}

func ensureAuditLogs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_logs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Diretoria's audit screen: newest first, optionally per actor.
		{
			Keys:    bson.D{{Key: "at", Value: -1}},
			Options: options.Index().SetName("idx_audit_at"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_at"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("idx_audit_action_at"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("notifications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-user inbox, unread first by query, newest first.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_created"),
		},
		// Auto-expire notifications after 90 days.
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(90 * 24 * 60 * 60).
				SetName("idx_notifications_created_ttl_90d"),
		},
	})
}
