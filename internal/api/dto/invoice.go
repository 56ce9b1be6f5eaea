package dto

import (
	"github.com/fiberbill/fiberbill/internal/domain/invoice"
	"github.com/fiberbill/fiberbill/internal/types"
)

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
