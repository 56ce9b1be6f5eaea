package types

import (
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/samber/lo"
)

// BillingType represents when a subscriber is charged relative to the service period
type BillingType string

const (
	BillingTypePrepaid  BillingType = "prepaid"
	BillingTypePostpaid BillingType = "postpaid"
)

func (t BillingType) String() string {
	return string(t)
}

func (t BillingType) Validate() error {
	allowed := []BillingType{
		BillingTypePrepaid,
		BillingTypePostpaid,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid billing type").
			WithHintf("Billing type must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PeriodUnit is the unit of a subscriber's active period
type PeriodUnit string

const (
	PeriodUnitDays   PeriodUnit = "days"
	PeriodUnitMonths PeriodUnit = "months"
)

func (u PeriodUnit) String() string {
	return string(u)
}

func (u PeriodUnit) Validate() error {
	allowed := []PeriodUnit{
		PeriodUnitDays,
		PeriodUnitMonths,
	}
	if !lo.Contains(allowed, u) {
		return ierr.NewError("invalid period unit").
			WithHintf("Period unit must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingStatus tracks whether the subscriber has settled the current billing period
type BillingStatus string

const (
	BillingStatusUnpaid    BillingStatus = "unpaid"
	BillingStatusPaid      BillingStatus = "paid"
	BillingStatusSuspended BillingStatus = "suspended"
)

func (s BillingStatus) String() string {
	return string(s)
}

func (s BillingStatus) Validate() error {
	allowed := []BillingStatus{
		BillingStatusUnpaid,
		BillingStatusPaid,
		BillingStatusSuspended,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid billing status").
			WithHintf("Billing status must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ServiceStatus tracks whether the subscriber's installation is live.
// This axis is owned by installation, not by billing, and is never
// reversed by the suspension engine.
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusInactive ServiceStatus = "inactive"
)

func (s ServiceStatus) String() string {
	return string(s)
}

func (s ServiceStatus) Validate() error {
	allowed := []ServiceStatus{
		ServiceStatusActive,
		ServiceStatusInactive,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid service status").
			WithHintf("Service status must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RouterAccountStatus mirrors the last confirmed state of the subscriber's
// PPP account on the router. Only updated after a confirmed gateway response.
type RouterAccountStatus string

const (
	RouterAccountStatusActive   RouterAccountStatus = "active"
	RouterAccountStatusDisabled RouterAccountStatus = "disabled"
)

func (s RouterAccountStatus) String() string {
	return string(s)
}

func (s RouterAccountStatus) Validate() error {
	allowed := []RouterAccountStatus{
		RouterAccountStatusActive,
		RouterAccountStatusDisabled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid router account status").
			WithHintf("Router account status must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceKind classifies a transaction record in the invoice ledger
type InvoiceKind string

const (
	InvoiceKindPayment  InvoiceKind = "payment"
	InvoiceKindPenalty  InvoiceKind = "penalty"
	InvoiceKindDiscount InvoiceKind = "discount"
	InvoiceKindRefund   InvoiceKind = "refund"
)

func (k InvoiceKind) String() string {
	return string(k)
}

func (k InvoiceKind) Validate() error {
	allowed := []InvoiceKind{
		InvoiceKindPayment,
		InvoiceKindPenalty,
		InvoiceKindDiscount,
		InvoiceKindRefund,
	}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid invoice kind").
			WithHintf("Invoice kind must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHintf("Invoice status must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AddonItemType classifies a subscriber addon charge
type AddonItemType string

const (
	AddonItemTypeOneTime AddonItemType = "one_time"
	AddonItemTypeMonthly AddonItemType = "monthly"
)

func (t AddonItemType) String() string {
	return string(t)
}

func (t AddonItemType) Validate() error {
	allowed := []AddonItemType{
		AddonItemTypeOneTime,
		AddonItemTypeMonthly,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid addon item type").
			WithHintf("Addon item type must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}
