package contractpolicy

import (
	"testing"

	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanView(t *testing.T) {
	owner := primitive.NewObjectID()
	contract := models.Contract{
		ID: primitive.NewObjectID(), UserID: owner,
		City: "Salvador", State: "BA", Region: "Nordeste",
	}

	tests := []struct {
		name string
		p    principal.Principal
		want bool
	}{
		{"diretoria", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Diretoria}, true},
		{"superintendencia same region", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Superintendencia, Region: "Nordeste"}, true},
		{"superintendencia other region", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Superintendencia, Region: "Sul"}, false},
		{"gerencia_regional same state", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.GerenciaRegional, State: "BA"}, true},
		{"comercial same city", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Comercial, City: "Salvador"}, true},
		{"comercial other city", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Comercial, City: "Feira de Santana"}, false},
		{"comercial missing city", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Comercial}, false},
		{"operacional owner", principal.Principal{UserID: owner, Role: roles.Operacional}, true},
		{"operacional other user", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Operacional}, false},
		{"unknown role", principal.Principal{UserID: owner, Role: roles.Role("admin")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.p, contract); got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditStatus(t *testing.T) {
	owner := primitive.NewObjectID()
	contract := models.Contract{
		ID: primitive.NewObjectID(), UserID: owner,
		City: "Salvador", State: "BA", Region: "Nordeste",
	}

	tests := []struct {
		name string
		p    principal.Principal
		want bool
	}{
		{"diretoria", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Diretoria}, true},
		{"gerencia_regional same state", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.GerenciaRegional, State: "BA"}, true},
		{"gerencia_regional other state", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.GerenciaRegional, State: "SP"}, false},
		{"comercial same city", principal.Principal{UserID: primitive.NewObjectID(), Role: roles.Comercial, City: "Salvador"}, true},
		{"operacional owner", principal.Principal{UserID: owner, Role: roles.Operacional}, false},
		{"unknown role", principal.Principal{UserID: owner, Role: roles.Role("admin")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEditStatus(tt.p, contract); got != tt.want {
				t.Errorf("CanEditStatus = %v, want %v", got, tt.want)
			}
		})
	}
}
