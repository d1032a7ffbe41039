// internal/domain/models/contract.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contract statuses as they arrive from the CRM feeds.
const (
	ContractPago      = "pago"
	ContractPendente  = "pendente"
	ContractCancelado = "cancelado"
)

// Contract is a sales contract owned by the user that originated it.
//
// City/State/Region are snapshots of the owner's locality at creation time.
// They are deliberately never re-stamped when the owner moves: historical
// records keep the locality under which they were produced, and the scope
// resolver filters on these denormalized fields without joins.
type Contract struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID string             `bson:"external_id,omitempty" json:"external_id,omitempty"` // CRM-side identifier
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`

	ClientName   string  `bson:"client_name" json:"client_name"`
	ClientNameCI string  `bson:"client_name_ci" json:"client_name_ci"`
	ClientCPF    string  `bson:"client_cpf,omitempty" json:"client_cpf,omitempty"` // digits only
	Value        float64 `bson:"value" json:"value"`
	Date         time.Time `bson:"date" json:"date"`
	Status       string  `bson:"status" json:"status"` // pago | pendente | cancelado | ...

	Promotora   string `bson:"promotora,omitempty" json:"promotora,omitempty"`
	Tabela      string `bson:"tabela,omitempty" json:"tabela,omitempty"`
	TipoEmpresa string `bson:"tipo_empresa,omitempty" json:"tipo_empresa,omitempty"`

	City   string `bson:"city,omitempty" json:"city,omitempty"`
	State  string `bson:"state,omitempty" json:"state,omitempty"`
	Region string `bson:"region,omitempty" json:"region,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the contract counts toward the active-contracts KPI.
func (c Contract) Active() bool {
	return c.Status == ContractPago || c.Status == ContractPendente
}
