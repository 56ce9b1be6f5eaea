package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fiberbill/fiberbill/internal/domain/addonitem"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/jmoiron/sqlx"
)

type addonItemRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAddonItemRepository creates a postgres-backed addon item repository
func NewAddonItemRepository(db *postgres.DB, logger *logger.Logger) addonitem.Repository {
	return &addonItemRepository{db: db, logger: logger}
}

const addonItemColumns = `
	id, subscriber_id, name, item_type,
	price, quantity, is_paid, paid_at,
	status, created_at, updated_at, created_by, updated_by`

func (r *addonItemRepository) Create(ctx context.Context, item *addonitem.AddonItem) error {
	query := `
		INSERT INTO addon_items (` + addonItemColumns + `)
		VALUES (
			:id, :subscriber_id, :name, :item_type,
			:price, :quantity, :is_paid, :paid_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Addon item with ID %s already exists", item.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create addon item").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *addonItemRepository) Get(ctx context.Context, id string) (*addonitem.AddonItem, error) {
	query := `SELECT ` + addonItemColumns + ` FROM addon_items WHERE id = $1 AND status != $2`

	var item addonitem.AddonItem
	err := r.db.GetQuerier(ctx).GetContext(ctx, &item, query, id, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHintf("Addon item with ID %s was not found", id).
				WithReportableDetails(map[string]any{"addon_item_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get addon item").
			Mark(ierr.ErrDatabase)
	}
	return &item, nil
}

func (r *addonItemRepository) List(ctx context.Context, filter *types.AddonItemFilter) ([]*addonitem.AddonItem, error) {
	clauses := []string{"status != ?"}
	args := []interface{}{types.StatusDeleted}

	if filter == nil {
		filter = &types.AddonItemFilter{QueryFilter: types.NewNoLimitQueryFilter()}
	}
	if filter.SubscriberID != "" {
		clauses = append(clauses, "subscriber_id = ?")
		args = append(args, filter.SubscriberID)
	}
	if filter.ItemType != nil {
		clauses = append(clauses, "item_type = ?")
		args = append(args, *filter.ItemType)
	}
	if filter.UnpaidOnly {
		clauses = append(clauses, "(item_type != ? OR is_paid = false)")
		args = append(args, types.AddonItemTypeOneTime)
	}

	query := `SELECT ` + addonItemColumns + ` FROM addon_items WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY created_at ASC`
	if !filter.IsUnlimited() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var items []*addonitem.AddonItem
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list addon items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

func (r *addonItemRepository) Update(ctx context.Context, item *addonitem.AddonItem) error {
	query := `
		UPDATE addon_items SET
			name = :name, item_type = :item_type,
			price = :price, quantity = :quantity,
			is_paid = :is_paid, paid_at = :paid_at,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update addon item").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "addon item", item.ID)
}

func (r *addonItemRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE addon_items SET status = $1, updated_at = NOW() WHERE id = $2 AND status != $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete addon item").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "addon item", id)
}
