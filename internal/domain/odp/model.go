package odp

import (
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/types"
)

// ODP is an optical distribution point: a physical fiber splice point with a
// finite number of subscriber connection slots.
type ODP struct {
	ID string `db:"id" json:"id"`

	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`

	// TotalSlots is the physical slot capacity, at least 1
	TotalSlots int `db:"total_slots" json:"total_slots"`

	// UsedSlots is mutated only through the slot ledger operations
	UsedSlots int `db:"used_slots" json:"used_slots"`

	types.BaseModel
}

// AvailableSlots is always derived, never stored or independently trusted
func (o *ODP) AvailableSlots() int {
	return o.TotalSlots - o.UsedSlots
}

// HasCapacity reports whether one more subscriber can be attached
func (o *ODP) HasCapacity() bool {
	return o.AvailableSlots() > 0
}

// Validate checks invariants that hold for every persisted ODP
func (o *ODP) Validate() error {
	if o.Name == "" {
		return ierr.NewError("odp name is required").
			WithHint("ODP name is required").
			Mark(ierr.ErrValidation)
	}
	if o.TotalSlots < 1 {
		return ierr.NewError("odp must have at least one slot").
			WithHint("Total slots must be at least 1").
			Mark(ierr.ErrValidation)
	}
	if o.UsedSlots < 0 || o.UsedSlots > o.TotalSlots {
		return ierr.NewError("odp slot count out of range").
			WithHintf("Used slots must be between 0 and %d", o.TotalSlots).
			Mark(ierr.ErrValidation)
	}
	return nil
}
