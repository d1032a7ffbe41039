// internal/app/system/paging/paging.go
package paging

import (
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows per page in paged lists.
// Kept as an int because call sites add/subtract before casting to int64
// for Mongo Find().SetLimit().
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// Result holds the output of TrimPage for keyset pagination.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a fetched slice for keyset pagination.
// Call this after fetching PageSize+1 rows. It modifies the slice in place
// and returns pagination indicators.
//
// When going backwards (before != ""):
//   - If len > PageSize, trim the first element (older page exists)
//   - HasNext is always true (we came from somewhere)
//
// When going forwards or on first page:
//   - If len > PageSize, trim to PageSize (next page exists)
//   - HasPrev is true only if after != ""
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var hasPrev, hasNext bool

	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[1:]
			hasPrev = true
		}
		hasNext = true
	} else {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			hasNext = true
		}
		hasPrev = after != ""
	}

	return Result{HasPrev: hasPrev, HasNext: hasNext}
}

// Direction indicates the pagination direction relative to the listing's
// natural order.
type Direction int

const (
	Forward  Direction = iota // follow the listing's natural order
	Backward                  // walk against it (the "before" cursor)
)

// KeysetConfig holds the result of configuring keyset pagination.
//
// SortOrder is the effective Mongo sort for this fetch: the listing's base
// order when moving forward, its inverse when moving backward. Backward
// fetches must be reversed (paging.Reverse) before display.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 ascending, -1 descending
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset determines pagination direction and decodes the cursor
// for a listing whose natural order is ascending (users by folded name).
func ConfigureKeyset(before, after string) KeysetConfig {
	return configureKeyset(before, after, 1)
}

// ConfigureKeysetDesc is ConfigureKeyset for a listing whose natural order
// is descending (contracts by date, newest first).
func ConfigureKeysetDesc(before, after string) KeysetConfig {
	return configureKeyset(before, after, -1)
}

func configureKeyset(before, after string, baseOrder int) KeysetConfig {
	cfg := KeysetConfig{
		Direction: Forward,
		SortOrder: baseOrder,
	}

	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -baseOrder
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}

	return cfg
}

// ApplyToFind configures FindOptions with sort and limit for keyset pagination.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// KeysetWindow returns the cursor condition for the query filter.
// Returns nil if no cursor is set.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.SortOrder < 0 {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// TimeKey encodes a time as a cursor sort key. Use with
// TimeKeysetWindow for listings sorted on a BSON date field, where the
// cursor key must round-trip back to a typed time for the Mongo
// comparison to work.
func TimeKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// TimeKeysetWindow is KeysetWindow for a date-sorted listing. It parses
// the cursor key back into a time.Time so the window compares date values,
// not strings. An unparseable cursor yields no window, which restarts the
// listing from the top instead of failing the request.
func (cfg KeysetConfig) TimeKeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, cfg.Cursor.CI)
	if err != nil {
		return nil
	}
	op := "$gt"
	if cfg.SortOrder < 0 {
		op = "$lt"
	}
	return bson.M{"$or": bson.A{
		bson.M{sortField: bson.M{op: t}},
		bson.M{sortField: t, "_id": bson.M{op: cfg.Cursor.ID}},
	}}
}

// Reverse reverses a slice in place. Use this after fetching results
// when paging backwards to restore the correct display order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last elements.
// keyFn extracts the sort key from an element.
// idFn extracts the ObjectID from an element.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first := rows[0]
	last := rows[len(rows)-1]
	prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
	next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
	return prev, next
}
