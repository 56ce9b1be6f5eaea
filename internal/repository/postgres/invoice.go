package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/fiberbill/fiberbill/internal/postgres"
	"github.com/fiberbill/fiberbill/internal/types"
	"github.com/jmoiron/sqlx"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRepository creates a postgres-backed invoice repository
func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `
	id, subscriber_id, kind, invoice_status, amount,
	period_from, period_to, due_date, paid_at,
	description, breakdown,
	status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (
			:id, :subscriber_id, :kind, :invoice_status, :amount,
			:period_from, :period_to, :due_date, :paid_at,
			:description, :breakdown,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Invoice with ID %s already exists", inv.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHintf("Invoice with ID %s was not found", id).
				WithReportableDetails(map[string]any{"invoice_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			kind = :kind, invoice_status = :invoice_status, amount = :amount,
			period_from = :period_from, period_to = :period_to,
			due_date = :due_date, paid_at = :paid_at,
			description = :description, breakdown = :breakdown,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	return ensureRowAffected(result, "invoice", inv.ID)
}

func buildInvoiceFilter(filter *types.InvoiceFilter) (string, []interface{}) {
	clauses := []string{"1 = 1"}
	var args []interface{}

	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}

	if len(filter.InvoiceIDs) > 0 {
		placeholders := make([]string, len(filter.InvoiceIDs))
		for i, id := range filter.InvoiceIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		clauses = append(clauses, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.SubscriberID != "" {
		clauses = append(clauses, "subscriber_id = ?")
		args = append(args, filter.SubscriberID)
	}
	if filter.Kind != nil {
		clauses = append(clauses, "kind = ?")
		args = append(args, *filter.Kind)
	}
	if filter.InvoiceStatus != nil {
		clauses = append(clauses, "invoice_status = ?")
		args = append(args, *filter.InvoiceStatus)
	} else {
		clauses = append(clauses, "invoice_status != ?")
		args = append(args, types.InvoiceStatusCancelled)
	}
	if filter.StartTime != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, *filter.StartTime)
	}
	if filter.EndTime != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, *filter.EndTime)
	}

	return strings.Join(clauses, " AND "), args
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	where, args := buildInvoiceFilter(filter)
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where + ` ORDER BY created_at DESC`

	if filter != nil && !filter.IsUnlimited() {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, args := buildInvoiceFilter(filter)
	query := sqlx.Rebind(sqlx.DOLLAR, `SELECT COUNT(*) FROM invoices WHERE `+where)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
