package controller

import "github.com/quantkit/quantkit/hooking"

// HookPosStateChange is raised once per logical operation step that changed
// observable state. The HookCtx item is a State snapshot.
var HookPosStateChange = &hooking.HookPos{Name: "StateChange"}

// HookPosOperationEnd is raised when an operation finishes with an
// authoritative outcome (committed, reverted, or rejected). The HookCtx item
// is an OperationRecord. Stale discards do not raise it.
var HookPosOperationEnd = &hooking.HookPos{Name: "OperationEnd"}

// State is a read-only snapshot of the controller's observable state.
type State struct {
	Quantity        int    `json:"quantity"`
	DisplayQuantity int    `json:"display_quantity"`
	PendingQuantity int    `json:"pending_quantity"`
	HasPending      bool   `json:"has_pending"`
	Expanded        bool   `json:"is_expanded"`
	Loading         bool   `json:"is_loading"`
	Generation      uint64 `json:"generation"`
	Disposed        bool   `json:"is_disposed"`
	CanIncrement    bool   `json:"can_increment"`
	CanDecrement    bool   `json:"can_decrement"`
	AtMin           bool   `json:"is_at_min"`
	AtMax           bool   `json:"is_at_max"`
}

// OpContext identifies the operation a task failure originated from.
type OpContext struct {
	// Op is the operation name, such as "SetQuantityAsync" or
	// "IncrementAsync".
	Op string

	// Target is the quantity the operation was trying to commit.
	Target int

	// Generation is the generation ticket the operation held.
	Generation uint64
}

// Outcomes recorded for finished operations.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeReverted  = "reverted"
	OutcomeFailed    = "failed"
)

// OperationRecord is the flat, journal-friendly description of a finished
// operation. All fields are plain scalars so the record can be inserted into
// a journal table directly.
type OperationRecord struct {
	ID         string
	Controller string
	Op         string
	FromQty    int
	ToQty      int
	Generation uint64
	Outcome    string
	Error      string
}
