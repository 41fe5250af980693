package model

import "time"

// SwapStatus is the lifecycle state of a swap request.
// pending -> accepted and pending -> cancelled are the only
// transitions; accepted and cancelled are terminal.
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapCancelled SwapStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s SwapStatus) Valid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s SwapStatus) Terminal() bool {
	return s == SwapAccepted || s == SwapCancelled
}

// Active reports whether the request still matters for display and
// overlay purposes. Cancelled requests are kept for audit only.
func (s SwapStatus) Active() bool {
	return s == SwapPending || s == SwapAccepted
}

// SwapRequest asks another flatmate to take over one (week, area)
// assignment. Created by the rostered person; accepted by anyone else.
type SwapRequest struct {
	ID             string     `json:"id"`
	WeekID         int        `json:"week_id"`
	AreaID         AreaID     `json:"area_id"`
	OriginalPerson Person     `json:"original_person"`
	SwappedWith    *Person    `json:"swapped_with,omitempty"`
	Status         SwapStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}
