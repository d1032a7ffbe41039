// Package scope builds the declarative filter a principal's role permits
// for each resource type, and serializes it for the query executor.
//
// A Predicate is a small tagged variant:
//
//	All                 matches every record (no constraint)
//	None                matches no record (fail-closed deny)
//	Eq(field, value)    field equality
//	Gte/Lte(field, v)   range bounds (date filters)
//	And(p, q, ...)      conjunction
//
// Predicates compose conjunctively with user-supplied display filters;
// composition can only narrow a scope, never widen it.
package scope

import (
	"fmt"
	"strings"
	"time"
)

// Op identifies a predicate node kind.
type Op string

const (
	OpAll  Op = "all"
	OpNone Op = "none"
	OpEq   Op = "eq"
	OpGte  Op = "gte"
	OpLte  Op = "lte"
	OpAnd  Op = "and"
)

// Predicate is one node of a scope filter. Leaf nodes (Eq, Gte, Lte) carry
// Field/Value; And carries Children; All and None carry nothing.
type Predicate struct {
	Op       Op
	Field    string
	Value    any
	Children []Predicate
}

// All matches everything.
func All() Predicate { return Predicate{Op: OpAll} }

// None matches nothing. This is the fail-closed result for principals
// whose role requires a locality attribute they do not have.
func None() Predicate { return Predicate{Op: OpNone} }

// Eq constrains field == value.
func Eq(field string, value any) Predicate {
	return Predicate{Op: OpEq, Field: field, Value: value}
}

// Gte constrains field >= value.
func Gte(field string, value any) Predicate {
	return Predicate{Op: OpGte, Field: field, Value: value}
}

// Lte constrains field <= value.
func Lte(field string, value any) Predicate {
	return Predicate{Op: OpLte, Field: field, Value: value}
}

// And conjoins predicates. All nodes are absorbed, a None node collapses
// the whole conjunction to None, and a single remaining clause is returned
// unwrapped.
func And(ps ...Predicate) Predicate {
	flat := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		switch p.Op {
		case OpAll:
			// identity element
		case OpNone:
			return None()
		case OpAnd:
			flat = append(flat, p.Children...)
		default:
			flat = append(flat, p)
		}
	}
	switch len(flat) {
	case 0:
		return All()
	case 1:
		return flat[0]
	}
	return Predicate{Op: OpAnd, Children: flat}
}

// IsAll reports whether p matches everything.
func (p Predicate) IsAll() bool { return p.Op == OpAll }

// IsNone reports whether p matches nothing.
func (p Predicate) IsNone() bool { return p.Op == OpNone }

// MatchDoc evaluates p against a flat document. Used for in-memory checks
// in tests and CSV row filtering; the query executor evaluates the BSON
// form server-side.
func (p Predicate) MatchDoc(doc map[string]any) bool {
	switch p.Op {
	case OpAll:
		return true
	case OpNone:
		return false
	case OpEq:
		return compare(doc[p.Field], p.Value) == 0
	case OpGte:
		return compare(doc[p.Field], p.Value) >= 0
	case OpLte:
		return compare(doc[p.Field], p.Value) <= 0
	case OpAnd:
		for _, c := range p.Children {
			if !c.MatchDoc(doc) {
				return false
			}
		}
		return true
	default:
		// unknown node kinds fail closed
		return false
	}
}

// compare returns -1/0/+1 for the supported leaf value kinds, and a
// non-zero sentinel when the kinds are incomparable (which makes every
// leaf op evaluate false).
func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := toFloat(b); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case int:
		return compare(float64(av), b)
	case int64:
		return compare(float64(av), b)
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	default:
		if a == b {
			return 0
		}
	}
	return -2
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// String renders a compact human-readable form for logs and test failures.
func (p Predicate) String() string {
	switch p.Op {
	case OpAll:
		return "all"
	case OpNone:
		return "none"
	case OpEq:
		return fmt.Sprintf("%s == %v", p.Field, p.Value)
	case OpGte:
		return fmt.Sprintf("%s >= %v", p.Field, p.Value)
	case OpLte:
		return fmt.Sprintf("%s <= %v", p.Field, p.Value)
	case OpAnd:
		parts := make([]string, len(p.Children))
		for i, c := range p.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " && ") + ")"
	default:
		return "invalid"
	}
}
