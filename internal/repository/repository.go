// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/case-runner/internal/model"
)

// ListOptions carries pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// CaseRepository persists cases.
//
// GetByID, Update, UpdateResponse, and Delete are intentionally not scoped
// to an owner — only ListByOwner filters by the calling user. This mirrors
// the API surface, where single-record routes are unauthenticated.
type CaseRepository interface {
	Create(ctx context.Context, c *model.Case) error
	GetByID(ctx context.Context, id string) (*model.Case, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Case, error)
	Update(ctx context.Context, c *model.Case) error
	// UpdateResponse overwrites only the captured response columns.
	// Used by the dispatcher; never touches the used flag.
	UpdateResponse(ctx context.Context, id, code, body string) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists user accounts. Users are created by registration
// and read for login and identity resolution; there is no update or delete.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
