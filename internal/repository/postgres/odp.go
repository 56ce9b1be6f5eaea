package postgres

import (
	"context"
	"database/sql"

	"github.com/fiberbill/fiberbill/internal/domain/odp"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	"github.com/fiberbill/fiberbill/internal/types"
)

type odpRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewODPRepository creates a postgres-backed ODP repository
func NewODPRepository(db *postgres.DB, logger *logger.Logger) odp.Repository {
	return &odpRepository{db: db, logger: logger}
}

const odpColumns = `
	id, name, location, total_slots, used_slots,
	status, created_at, updated_at, created_by, updated_by`

func (r *odpRepository) Create(ctx context.Context, o *odp.ODP) error {
	query := `
		INSERT INTO odps (` + odpColumns + `)
		VALUES (
			:id, :name, :location, :total_slots, :used_slots,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("ODP with name %s already exists", o.Name).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create ODP").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *odpRepository) Get(ctx context.Context, id string) (*odp.ODP, error) {
	query := `SELECT ` + odpColumns + ` FROM odps WHERE id = $1 AND status != $2`

	var o odp.ODP
	err := r.db.GetQuerier(ctx).GetContext(ctx, &o, query, id, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHintf("ODP with ID %s was not found", id).
				WithReportableDetails(map[string]any{"odp_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ODP").
			Mark(ierr.ErrDatabase)
	}
	return &o, nil
}

func (r *odpRepository) List(ctx context.Context) ([]*odp.ODP, error) {
	query := `SELECT ` + odpColumns + ` FROM odps WHERE status != $1 ORDER BY name ASC`

	var odps []*odp.ODP
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &odps, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ODPs").
			Mark(ierr.ErrDatabase)
	}
	return odps, nil
}

func (r *odpRepository) Update(ctx context.Context, o *odp.ODP) error {
	query := `
		UPDATE odps SET
			name = :name, location = :location,
			total_slots = :total_slots, used_slots = :used_slots,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, o)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update ODP").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "ODP", o.ID)
}

func (r *odpRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE odps SET status = $1, updated_at = NOW() WHERE id = $2 AND status != $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete ODP").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "ODP", id)
}
