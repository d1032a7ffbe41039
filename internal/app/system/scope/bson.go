// internal/app/system/scope/bson.go
package scope

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// BSON serializes p into the query executor's constraint format: a bson.D
// conjunction of field constraints. All becomes the empty document, None
// becomes a constraint no document satisfies.
//
// The encoding is canonical so that FromBSON(p.BSON()) reproduces the same
// conjunction of clauses: nested Ands are flattened first.
func (p Predicate) BSON() bson.D {
	switch p.Op {
	case OpAll:
		return bson.D{}
	case OpNone:
		// _id is always present, so exists:false matches nothing.
		return bson.D{{Key: "_id", Value: bson.D{{Key: "$exists", Value: false}}}}
	case OpEq:
		return bson.D{{Key: p.Field, Value: p.Value}}
	case OpGte:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$gte", Value: p.Value}}}}
	case OpLte:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$lte", Value: p.Value}}}}
	case OpAnd:
		clauses := make(bson.A, 0, len(p.Children))
		for _, c := range p.Children {
			clauses = append(clauses, c.BSON())
		}
		return bson.D{{Key: "$and", Value: clauses}}
	default:
		// fail closed on anything unrecognized
		return None().BSON()
	}
}

// FromBSON parses a filter produced by BSON back into a Predicate. It
// exists so tests can prove the round trip preserves the conjunction
// exactly; the service itself only travels one direction.
func FromBSON(d bson.D) (Predicate, error) {
	if len(d) == 0 {
		return All(), nil
	}
	if len(d) == 1 && d[0].Key == "$and" {
		arr, ok := d[0].Value.(bson.A)
		if !ok {
			return Predicate{}, fmt.Errorf("scope: $and value is %T, want bson.A", d[0].Value)
		}
		children := make([]Predicate, 0, len(arr))
		for _, el := range arr {
			sub, ok := el.(bson.D)
			if !ok {
				return Predicate{}, fmt.Errorf("scope: $and element is %T, want bson.D", el)
			}
			child, err := FromBSON(sub)
			if err != nil {
				return Predicate{}, err
			}
			children = append(children, child)
		}
		return Predicate{Op: OpAnd, Children: children}, nil
	}
	if len(d) != 1 {
		return Predicate{}, fmt.Errorf("scope: expected single-clause document, got %d keys", len(d))
	}

	e := d[0]
	if sub, ok := e.Value.(bson.D); ok && len(sub) == 1 {
		switch sub[0].Key {
		case "$exists":
			if v, ok := sub[0].Value.(bool); ok && !v && e.Key == "_id" {
				return None(), nil
			}
			return Predicate{}, fmt.Errorf("scope: unsupported $exists clause on %q", e.Key)
		case "$gte":
			return Gte(e.Key, sub[0].Value), nil
		case "$lte":
			return Lte(e.Key, sub[0].Value), nil
		}
	}
	return Eq(e.Key, e.Value), nil
}
