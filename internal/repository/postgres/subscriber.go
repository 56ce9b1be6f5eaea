package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fiberbill/fiberbill/internal/domain/subscriber"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/jmoiron/sqlx"
)

type subscriberRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewSubscriberRepository creates a postgres-backed subscriber repository
func NewSubscriberRepository(db *postgres.DB, logger *logger.Logger) subscriber.Repository {
	return &subscriberRepository{db: db, logger: logger}
}

const subscriberColumns = `
	id, number, name, phone, address,
	package_price, addon_price, discount,
	billing_type, active_period, active_period_unit,
	active_date, expire_date, payment_due_date,
	billing_status, service_status, router_account_status,
	proration_applied, proration_amount,
	router_account_name, router_id, odp_id,
	last_billing_date, next_billing_date, last_suspend_date,
	status, created_at, updated_at, created_by, updated_by`

func (r *subscriberRepository) Create(ctx context.Context, sub *subscriber.Subscriber) error {
	query := `
		INSERT INTO subscribers (` + subscriberColumns + `)
		VALUES (
			:id, :number, :name, :phone, :address,
			:package_price, :addon_price, :discount,
			:billing_type, :active_period, :active_period_unit,
			:active_date, :expire_date, :payment_due_date,
			:billing_status, :service_status, :router_account_status,
			:proration_applied, :proration_amount,
			:router_account_name, :router_id, :odp_id,
			:last_billing_date, :next_billing_date, :last_suspend_date,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Subscriber with ID %s already exists", sub.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create subscriber").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriberRepository) Get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1 AND status != $2`

	var sub subscriber.Subscriber
	err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, id, types.StatusDeleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHintf("Subscriber with ID %s was not found", id).
				WithReportableDetails(map[string]any{"subscriber_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscriber").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

// buildFilterClauses translates the filter into WHERE clauses with
// positional args starting at base+1
func buildSubscriberFilter(filter *types.SubscriberFilter) (string, []interface{}) {
	clauses := []string{"status != ?"}
	args := []interface{}{types.StatusDeleted}

	if filter == nil {
		return strings.Join(clauses, " AND "), args
	}

	if len(filter.SubscriberIDs) > 0 {
		placeholders := make([]string, len(filter.SubscriberIDs))
		for i, id := range filter.SubscriberIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		clauses = append(clauses, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.BillingStatus != nil {
		clauses = append(clauses, "billing_status = ?")
		args = append(args, *filter.BillingStatus)
	}
	if filter.ServiceStatus != nil {
		clauses = append(clauses, "service_status = ?")
		args = append(args, *filter.ServiceStatus)
	}
	if filter.RouterAccountStatus != nil {
		clauses = append(clauses, "router_account_status = ?")
		args = append(args, *filter.RouterAccountStatus)
	}
	if filter.NotRouterAccountStatus != nil {
		clauses = append(clauses, "router_account_status != ?")
		args = append(args, *filter.NotRouterAccountStatus)
	}
	if filter.NamePattern != "" {
		clauses = append(clauses, "name ILIKE ?")
		args = append(args, "%"+filter.NamePattern+"%")
	}
	if filter.ODPID != nil {
		clauses = append(clauses, "odp_id = ?")
		args = append(args, *filter.ODPID)
	}
	if filter.RouterID != nil {
		clauses = append(clauses, "router_id = ?")
		args = append(args, *filter.RouterID)
	}

	return strings.Join(clauses, " AND "), args
}

func (r *subscriberRepository) List(ctx context.Context, filter *types.SubscriberFilter) ([]*subscriber.Subscriber, error) {
	where, args := buildSubscriberFilter(filter)
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE ` + where + ` ORDER BY created_at DESC`

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var subs []*subscriber.Subscriber
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscribers").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriberRepository) ListAll(ctx context.Context, filter *types.SubscriberFilter) ([]*subscriber.Subscriber, error) {
	if filter == nil {
		filter = types.NewNoLimitSubscriberFilter()
	}
	unlimited := *filter
	unlimited.QueryFilter = types.NewNoLimitQueryFilter()
	return r.List(ctx, &unlimited)
}

func (r *subscriberRepository) Count(ctx context.Context, filter *types.SubscriberFilter) (int, error) {
	where, args := buildSubscriberFilter(filter)
	query := sqlx.Rebind(sqlx.DOLLAR, `SELECT COUNT(*) FROM subscribers WHERE `+where)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count subscribers").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *subscriberRepository) Update(ctx context.Context, sub *subscriber.Subscriber) error {
	query := `
		UPDATE subscribers SET
			number = :number, name = :name, phone = :phone, address = :address,
			package_price = :package_price, addon_price = :addon_price, discount = :discount,
			billing_type = :billing_type, active_period = :active_period, active_period_unit = :active_period_unit,
			active_date = :active_date, expire_date = :expire_date, payment_due_date = :payment_due_date,
			billing_status = :billing_status, service_status = :service_status, router_account_status = :router_account_status,
			proration_applied = :proration_applied, proration_amount = :proration_amount,
			router_account_name = :router_account_name, router_id = :router_id, odp_id = :odp_id,
			last_billing_date = :last_billing_date, next_billing_date = :next_billing_date, last_suspend_date = :last_suspend_date,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscriber").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "subscriber", sub.ID)
}

func (r *subscriberRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE subscribers SET status = $1, updated_at = NOW() WHERE id = $2 AND status != $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, types.StatusDeleted, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete subscriber").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "subscriber", id)
}
