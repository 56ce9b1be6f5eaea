package types

// InvoiceFilter narrows invoice ledger queries.
// The invoice generator and the suspension engine both query by
// subscriber + kind/status + created-at range.
type InvoiceFilter struct {
	*QueryFilter
	TimeRangeFilter

	InvoiceIDs    []string       `json:"invoice_ids,omitempty" form:"invoice_ids"`
	SubscriberID  string         `json:"subscriber_id,omitempty" form:"subscriber_id"`
	Kind          *InvoiceKind   `json:"kind,omitempty" form:"kind"`
	InvoiceStatus *InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if err := f.TimeRangeFilter.Validate(); err != nil {
		return err
	}
	if f.Kind != nil {
		if err := f.Kind.Validate(); err != nil {
			return err
		}
	}
	if f.InvoiceStatus != nil {
		if err := f.InvoiceStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *InvoiceFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *InvoiceFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

// AddonItemFilter narrows addon item queries for one subscriber
type AddonItemFilter struct {
	*QueryFilter

	SubscriberID string         `json:"subscriber_id,omitempty" form:"subscriber_id"`
	ItemType     *AddonItemType `json:"item_type,omitempty" form:"item_type"`
	// UnpaidOnly keeps only one_time items not yet billed
	UnpaidOnly bool `json:"unpaid_only,omitempty" form:"unpaid_only"`
}

func (f *AddonItemFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.ItemType != nil {
		if err := f.ItemType.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *AddonItemFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *AddonItemFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *AddonItemFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
