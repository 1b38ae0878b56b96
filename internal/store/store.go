// Package store provides persistence for projects and managed servers.
//
// The interfaces are the only way any component mutates a record. Updates are
// unconditional field-level upserts: there is no optimistic-concurrency token,
// and fields a caller does not set are left untouched.
package store

import (
	"context"
	"errors"

	"github.com/NyiNyiSoePaing/blockscout-automation/internal/models"
	"github.com/NyiNyiSoePaing/blockscout-automation/internal/status"
)

var (
	// ErrNotFound is returned when the requested record does not exist or
	// has been deactivated.
	ErrNotFound = errors.New("record not found")

	// ErrProjectNameTaken is returned when a project with the same name
	// already exists.
	ErrProjectNameTaken = errors.New("project with this name already exists")

	// ErrNetworkTypeConflict is returned when a project already has an
	// active explorer server for the requested network type.
	ErrNetworkTypeConflict = errors.New("project already has an explorer server for this network type")
)

// ServerFilter narrows List results. Zero values mean "any".
type ServerFilter struct {
	ProjectID   uint
	Kind        models.ServerKind
	NetworkType models.NetworkType
	ActiveOnly  bool
}

// ServerUpdate is a partial update of a managed server. Nil fields are left
// unchanged.
type ServerUpdate struct {
	NetworkType     *models.NetworkType
	ChainID         *string
	Description     *string
	CloudInstanceID *string
	IPAddress       *string
	Domain          *string
	ServerURL       *string
	Status          *status.Status
	IsActive        *bool
}

// ProjectUpdate is a partial update of a project.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// ServerStore persists managed server records.
type ServerStore interface {
	Get(ctx context.Context, id uint) (*models.ManagedServer, error)
	List(ctx context.Context, f ServerFilter) ([]models.ManagedServer, error)
	Create(ctx context.Context, server *models.ManagedServer) error
	Update(ctx context.Context, id uint, upd ServerUpdate) error
	Deactivate(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// ProjectStore persists project records.
type ProjectStore interface {
	Get(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id uint, upd ProjectUpdate) error
	Delete(ctx context.Context, id uint) error
}
