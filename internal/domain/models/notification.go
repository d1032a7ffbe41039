// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an in-app message for a single user, currently emitted
// when a goal is assigned to them.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Message string             `bson:"message" json:"message"`
	Link    string             `bson:"link,omitempty" json:"link,omitempty"`
	IsRead  bool               `bson:"is_read" json:"is_read"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
