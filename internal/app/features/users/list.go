// internal/app/features/users/list.go
package users

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/policy/userpolicy"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/paging"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listResponse struct {
	Users      []models.User `json:"users"`
	Total      int64         `json:"total"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func emptyList(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listResponse{Users: []models.User{}})
}

// ServeList handles GET /users.
//
// Sorted by folded name and keyset-paged via before/after cursors. The
// role, status, and search parameters narrow the listing inside the scope
// userpolicy.ForList grants; a role parameter outside that grant yields an
// empty page rather than an error.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ls := userpolicy.ForList(p)
	if !ls.CanList {
		apierr.Forbidden(w)
		return
	}

	q := userstore.ListQuery{
		Roles:    ls.Roles,
		Locality: ls.Locality,
		Status:   query.Get(r, "status"),
		Search:   query.Get(r, "search"),
	}
	if want := query.Get(r, "role"); want != "" {
		role, err := roles.Parse(want)
		if err != nil {
			apierr.BadRequest(w, "unknown role")
			return
		}
		granted := false
		for _, allowed := range ls.Roles {
			if allowed == role {
				granted = true
				break
			}
		}
		if !granted {
			emptyList(w)
			return
		}
		q.Roles = []roles.Role{role}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user list")
	defer cancel()

	store := userstore.New(h.DB)

	total, err := store.Count(ctx, q)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: count failed", err, "could not load users")
		return
	}

	after := query.Get(r, "after")
	before := query.Get(r, "before")
	cfg := paging.ConfigureKeyset(before, after)
	find := options.Find()
	cfg.ApplyToFind(find, "nome_ci")

	rows, err := store.FindPage(ctx, q, cfg.KeysetWindow("nome_ci"), find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: find failed", err, "could not load users")
		return
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)

	prev, next := paging.BuildCursors(rows,
		func(u models.User) string { return u.NomeCI },
		func(u models.User) primitive.ObjectID { return u.ID },
	)

	if rows == nil {
		rows = []models.User{}
	}

	resp := listResponse{
		Users:   rows,
		Total:   total,
		HasPrev: res.HasPrev,
		HasNext: res.HasNext,
	}
	if res.HasPrev {
		resp.PrevCursor = prev
	}
	if res.HasNext {
		resp.NextCursor = next
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
