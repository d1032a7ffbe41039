// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents anyone who can sign in to the dashboard, from diretoria
// down to operacional.
//
// NOTE:
//   - Role here mirrors the role claim carried by the identity token for
//     display purposes only. Authorization always reads the claim, never
//     this field.
//   - City/State/Region are the locality attributes the scope resolver
//     matches against. Contracts and goals snapshot them at creation time.
type User struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nome   string             `bson:"nome" json:"nome"`
	NomeCI string             `bson:"nome_ci" json:"nome_ci"` // lowercase, diacritics-stripped
	Email  string             `bson:"email" json:"email"`
	Role   string             `bson:"role" json:"role"` // diretoria | superintendencia | gerencia_regional | comercial | operacional
	Status string             `bson:"status,omitempty" json:"status,omitempty"`

	City   string `bson:"city,omitempty" json:"city,omitempty"`
	State  string `bson:"state,omitempty" json:"state,omitempty"`
	Region string `bson:"region,omitempty" json:"region,omitempty"`

	// TokenEpoch is bumped on role change so outstanding identity tokens
	// issued before the change stop verifying.
	TokenEpoch int64 `bson:"token_epoch" json:"-"`

	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
