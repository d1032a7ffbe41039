// internal/domain/models/goal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal types.
const (
	GoalTypeValue = "value" // monetary target
	GoalTypeCount = "count" // contract-count target
)

// Goal is a sales target assigned to a user by someone with write authority
// over them (see goalpolicy). Locality fields are snapshots of the assignee's
// locality at assignment time, read-scoped like contracts.
type Goal struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"` // assignee

	Description string  `bson:"description" json:"description"`
	Type        string  `bson:"type" json:"type"` // value | count
	Target      float64 `bson:"target" json:"target"`
	Current     float64 `bson:"current" json:"current"`
	Period      string  `bson:"period" json:"period"` // e.g. "2026-09"

	City   string `bson:"city,omitempty" json:"city,omitempty"`
	State  string `bson:"state,omitempty" json:"state,omitempty"`
	Region string `bson:"region,omitempty" json:"region,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
