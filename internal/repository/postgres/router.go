package postgres

import (
	"context"
	"database/sql"

	"github.com/fiberbill/fiberbill/internal/domain/router"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	"github.com/fiberbill/fiberbill/internal/types"
)

type routerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewRouterRepository creates a postgres-backed router repository
func NewRouterRepository(db *postgres.DB, logger *logger.Logger) router.Repository {
	return &routerRepository{db: db, logger: logger}
}

const routerColumns = `
	id, name, host, port, username, password, use_tls,
	status, created_at, updated_at, created_by, updated_by`

func (r *routerRepository) Create(ctx context.Context, rtr *router.Router) error {
	query := `
		INSERT INTO routers (` + routerColumns + `)
		VALUES (
			:id, :name, :host, :port, :username, :password, :use_tls,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, rtr); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Router with name %s already exists", rtr.Name).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create router").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *routerRepository) Get(ctx context.Context, id string) (*router.Router, error) {
	query := `SELECT ` + routerColumns + ` FROM routers WHERE id = $1 AND status != $2`

	var rtr router.Router
	err := r.db.GetQuerier(ctx).GetContext(ctx, &rtr, query, id, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHintf("Router with ID %s was not found", id).
				WithReportableDetails(map[string]any{"router_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get router").
			Mark(ierr.ErrDatabase)
	}
	return &rtr, nil
}

func (r *routerRepository) List(ctx context.Context) ([]*router.Router, error) {
	query := `SELECT ` + routerColumns + ` FROM routers WHERE status != $1 ORDER BY name ASC`

	var routers []*router.Router
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &routers, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list routers").
			Mark(ierr.ErrDatabase)
	}
	return routers, nil
}

func (r *routerRepository) Update(ctx context.Context, rtr *router.Router) error {
	query := `
		UPDATE routers SET
			name = :name, host = :host, port = :port,
			username = :username, password = :password, use_tls = :use_tls,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, rtr)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update router").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "router", rtr.ID)
}

func (r *routerRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE routers SET status = $1, updated_at = NOW() WHERE id = $2 AND status != $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete router").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "router", id)
}
