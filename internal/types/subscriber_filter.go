package types

// SubscriberFilter narrows subscriber list queries
type SubscriberFilter struct {
	*QueryFilter

	SubscriberIDs []string `json:"subscriber_ids,omitempty" form:"subscriber_ids"`

	// Status narrows by lifecycle status; batch billing jobs set it to active
	// so archived records are never billed or swept
	Status *Status `json:"status,omitempty" form:"status"`

	BillingStatus       *BillingStatus       `json:"billing_status,omitempty" form:"billing_status"`
	ServiceStatus       *ServiceStatus       `json:"service_status,omitempty" form:"service_status"`
	RouterAccountStatus *RouterAccountStatus `json:"router_account_status,omitempty" form:"router_account_status"`

	// NotRouterAccountStatus excludes subscribers whose PPP account is already
	// in the given state; the suspension engine uses it to skip re-suspension
	NotRouterAccountStatus *RouterAccountStatus `json:"not_router_account_status,omitempty" form:"not_router_account_status"`

	// NamePattern matches subscriber names by case-insensitive substring
	NamePattern string `json:"name_pattern,omitempty" form:"name_pattern"`

	ODPID    *string `json:"odp_id,omitempty" form:"odp_id"`
	RouterID *string `json:"router_id,omitempty" form:"router_id"`
}

func NewSubscriberFilter() *SubscriberFilter {
	return &SubscriberFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitSubscriberFilter() *SubscriberFilter {
	return &SubscriberFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *SubscriberFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.BillingStatus != nil {
		if err := f.BillingStatus.Validate(); err != nil {
			return err
		}
	}
	if f.ServiceStatus != nil {
		if err := f.ServiceStatus.Validate(); err != nil {
			return err
		}
	}
	if f.RouterAccountStatus != nil {
		if err := f.RouterAccountStatus.Validate(); err != nil {
			return err
		}
	}
	if f.NotRouterAccountStatus != nil {
		if err := f.NotRouterAccountStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *SubscriberFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *SubscriberFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *SubscriberFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
