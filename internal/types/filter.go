package types

import (
	"time"

	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/samber/lo"
)

const (
	FilterDefaultLimit  = 50
	FilterMaxLimit      = 1000
	FilterDefaultOffset = 0
)

// BaseFilter is implemented by all list filters and drives pagination
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	IsUnlimited() bool
	Validate() error
}

// QueryFilter holds the common pagination fields embedded in entity filters
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit"`
	Offset *int `json:"offset,omitempty" form:"offset"`
}

// NewDefaultQueryFilter returns a filter with default pagination
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FilterDefaultLimit),
		Offset: lo.ToPtr(FilterDefaultOffset),
	}
}

// NewNoLimitQueryFilter returns a filter without pagination, used by batch jobs
// that must see every matching row
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(FilterDefaultOffset),
	}
}

// IsUnlimited returns true if this is an unlimited query
func (f QueryFilter) IsUnlimited() bool {
	return f.Limit == nil
}

func (f QueryFilter) GetLimit() int {
	if f.IsUnlimited() {
		return 0
	}
	return *f.Limit
}

func (f QueryFilter) GetOffset() int {
	if f.Offset == nil {
		return FilterDefaultOffset
	}
	return *f.Offset
}

func (f QueryFilter) Validate() error {
	if !f.IsUnlimited() {
		if *f.Limit <= 0 || *f.Limit > FilterMaxLimit {
			return ierr.NewError("invalid limit").
				WithHintf("Limit must be between 1 and %d", FilterMaxLimit).
				Mark(ierr.ErrValidation)
		}
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("Offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TimeRangeFilter bounds a query on a timestamp column, inclusive on both ends
type TimeRangeFilter struct {
	StartTime *time.Time `json:"start_time,omitempty" form:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

func (f TimeRangeFilter) Validate() error {
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return ierr.NewError("invalid time range").
			WithHint("End time must not be before start time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ListResponse is the standard shape of paginated list responses
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
