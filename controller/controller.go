package controller

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/quantkit/quantkit/hooking"
	"github.com/quantkit/quantkit/quantity"
)

// Controller is the single authority over a bounded quantity. It guarantees
// that at most one asynchronous operation is authoritative at any time.
//
// Use MakeBuilder to construct one.
type Controller struct {
	*hooking.HookableBase

	mu sync.Mutex

	name   string
	bounds quantity.Bounds

	qty        int
	pendingQty int
	hasPending bool
	expanded   bool
	loading    bool
	generation uint64
	disposed   bool

	strict    bool
	validator Validator
	logger    *slog.Logger

	onError      func(err error, op OpContext)
	onMaxReached func()
	onMinReached func()
	onRejected   func(current, attempted int)
}

// Name returns the name of the controller.
func (c *Controller) Name() string {
	return c.name
}

// Bounds returns the bounds the controller clamps against.
func (c *Controller) Bounds() quantity.Bounds {
	return c.bounds
}

// State returns a snapshot of the observable state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stateLocked()
}

// Quantity returns the last committed quantity.
func (c *Controller) Quantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.qty
}

// DisplayQuantity returns the pending quantity if an optimistic operation is
// in flight, and the committed quantity otherwise.
func (c *Controller) DisplayQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.displayLocked()
}

// IsLoading reports whether an asynchronous operation is outstanding and
// still current.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading
}

// IsExpanded reports whether the widget driven by this controller should show
// its expanded form.
func (c *Controller) IsExpanded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.expanded
}

// IsDisposed reports whether Dispose has been called.
func (c *Controller) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.disposed
}

// Snapshot exports the persistable portion of the controller state.
func (c *Controller) Snapshot() quantity.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return quantity.Snapshot{
		Quantity: c.qty,
		Min:      c.bounds.Min,
		Max:      c.bounds.Max,
		Step:     c.bounds.Step,
		Expanded: c.expanded,
		Loading:  c.loading,
	}
}

// SetQuantity clamps value into bounds and commits it immediately. An
// asynchronous operation that is still in flight is superseded: its eventual
// completion is discarded. The validation gate is consulted with the
// committed quantity and the clamped value.
func (c *Controller) SetQuantity(value int) {
	if !c.lockUsable("SetQuantity") {
		return
	}

	target := c.bounds.Clamp(value)
	current := c.qty

	if !c.allowLocked(current, target) {
		c.mu.Unlock()
		c.fireRejected(current, target)
		c.endOperation(OperationRecord{
			Op: "SetQuantity", FromQty: current, ToQty: target,
			Outcome: OutcomeRejected,
		})

		return
	}

	c.finishSyncCommit("SetQuantity", current, target, false, false)
}

// SetToMax commits the upper bound.
func (c *Controller) SetToMax() {
	c.SetQuantity(c.bounds.Max)
}

// SetToMin commits the lower bound.
func (c *Controller) SetToMin() {
	c.SetQuantity(c.bounds.Min)
}

// Increment steps the display quantity up by one step. It is a no-op while
// an asynchronous operation is loading, when the candidate would exceed the
// upper bound, or when the validation gate denies the change. Landing exactly
// on the upper bound fires the OnMaxReached callback.
func (c *Controller) Increment() {
	c.stepBy(+1, "Increment")
}

// Decrement steps the display quantity down by one step, symmetric to
// Increment. Landing exactly on the lower bound fires OnMinReached.
func (c *Controller) Decrement() {
	c.stepBy(-1, "Decrement")
}

func (c *Controller) stepBy(dir int, op string) {
	if !c.lockUsable(op) {
		return
	}

	if c.loading {
		c.mu.Unlock()
		return
	}

	current := c.displayLocked()
	candidate := current + dir*c.bounds.Step

	if !c.bounds.Contains(candidate) {
		c.mu.Unlock()
		return
	}

	if !c.allowLocked(current, candidate) {
		c.mu.Unlock()
		c.fireRejected(current, candidate)
		c.endOperation(OperationRecord{
			Op: op, FromQty: current, ToQty: candidate,
			Outcome: OutcomeRejected,
		})

		return
	}

	c.finishSyncCommit(op, current, candidate,
		dir > 0 && c.bounds.AtMax(candidate),
		dir < 0 && c.bounds.AtMin(candidate))
}

// Reset commits the lower bound, clears any pending or loading state, and
// fires OnMinReached. The floor is the reset target, not zero: a controller
// with a non-zero minimum resets to that minimum and stays expanded.
func (c *Controller) Reset() {
	if !c.lockUsable("Reset") {
		return
	}

	current := c.qty
	c.finishSyncCommit("Reset", current, c.bounds.Min, false, true)
}

// Expand marks the controller expanded. A zero quantity is seeded to the
// larger of the minimum and one step; the seed change is subject to the
// validation gate, and a denial leaves the quantity untouched while still
// expanding.
func (c *Controller) Expand() {
	if !c.lockUsable("Expand") {
		return
	}

	changed := false
	if !c.expanded {
		c.expanded = true
		changed = true
	}

	var rejectedFrom, rejectedTo int
	rejected := false

	if c.qty == 0 {
		seed := c.bounds.SeedValue()
		if c.allowLocked(c.qty, seed) {
			changed = c.supersedeLocked() || changed
			c.qty = seed
			changed = true
		} else {
			rejected = true
			rejectedFrom, rejectedTo = c.qty, seed
		}
	}

	snap := c.stateLocked()
	c.mu.Unlock()

	if changed {
		c.notifyStateChange(snap)
	}

	if rejected {
		c.fireRejected(rejectedFrom, rejectedTo)
	}
}

// Collapse marks the controller collapsed and forces the quantity back to
// the lower bound. The validation gate is not consulted.
func (c *Controller) Collapse() {
	if !c.lockUsable("Collapse") {
		return
	}

	changed := c.supersedeLocked()

	if c.expanded {
		c.expanded = false
		changed = true
	}

	if c.qty != c.bounds.Min {
		c.qty = c.bounds.Min
		changed = true
	}

	snap := c.stateLocked()
	c.mu.Unlock()

	if changed {
		c.notifyStateChange(snap)
	}
}

// CancelOperation invalidates the in-flight asynchronous operation, if any,
// and clears the pending and loading flags. The committed quantity is not
// touched, and the underlying task is not interrupted; its eventual
// completion is discarded.
func (c *Controller) CancelOperation() {
	if !c.lockUsable("CancelOperation") {
		return
	}

	if !c.loading && !c.hasPending {
		c.mu.Unlock()
		return
	}

	c.generation++
	c.loading = false
	c.hasPending = false

	snap := c.stateLocked()
	c.mu.Unlock()

	c.notifyStateChange(snap)
}

// Dispose permanently shuts the controller down. The generation advances one
// final time, so every outstanding asynchronous operation is discarded on
// completion. Dispose is idempotent. After Dispose, operations panic in
// strict mode and are silent no-ops otherwise.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}

	c.generation++
	c.loading = false
	c.hasPending = false
	c.disposed = true

	snap := c.stateLocked()
	c.mu.Unlock()

	c.notifyStateChange(snap)
}

// finishSyncCommit applies a gated-and-approved synchronous commit and
// performs the notification and callback tail. The caller must hold the
// mutex; it is released before callbacks run.
func (c *Controller) finishSyncCommit(
	op string,
	from, target int,
	fireMax, fireMin bool,
) {
	changed := c.supersedeLocked()

	if c.qty != target {
		c.qty = target
		changed = true
	}

	expanded := c.qty > 0
	if c.expanded != expanded {
		c.expanded = expanded
		changed = true
	}

	gen := c.generation
	snap := c.stateLocked()
	c.mu.Unlock()

	if changed {
		c.notifyStateChange(snap)
	}

	if fireMax {
		c.safeCallback("OnMaxReached", c.onMaxReached)
	}

	if fireMin {
		c.safeCallback("OnMinReached", c.onMinReached)
	}

	if changed {
		c.endOperation(OperationRecord{
			Op: op, FromQty: from, ToQty: target,
			Generation: gen, Outcome: OutcomeCommitted,
		})
	}
}

// supersedeLocked invalidates any in-flight asynchronous operation so that
// its completion self-discards on the generation check.
func (c *Controller) supersedeLocked() bool {
	changed := false

	if c.loading {
		c.generation++
		c.loading = false
		changed = true
	}

	if c.hasPending {
		c.hasPending = false
		changed = true
	}

	return changed
}

func (c *Controller) displayLocked() int {
	if c.hasPending {
		return c.pendingQty
	}

	return c.qty
}

func (c *Controller) stateLocked() State {
	display := c.displayLocked()

	return State{
		Quantity:        c.qty,
		DisplayQuantity: display,
		PendingQuantity: c.pendingQty,
		HasPending:      c.hasPending,
		Expanded:        c.expanded,
		Loading:         c.loading,
		Generation:      c.generation,
		Disposed:        c.disposed,
		CanIncrement: !c.disposed && !c.loading &&
			c.bounds.Contains(display+c.bounds.Step),
		CanDecrement: !c.disposed && !c.loading &&
			c.bounds.Contains(display-c.bounds.Step),
		AtMin: c.bounds.AtMin(display),
		AtMax: c.bounds.AtMax(display),
	}
}

func (c *Controller) allowLocked(current, proposed int) bool {
	if c.validator == nil {
		return true
	}

	return c.validator.Allow(current, proposed)
}

// lockUsable acquires the controller mutex and reports whether the operation
// may proceed. On true, the mutex is held by the caller. On a disposed
// controller the mutex is released again, and the call panics in strict mode
// or logs and returns false otherwise.
func (c *Controller) lockUsable(op string) bool {
	c.mu.Lock()
	if !c.disposed {
		return true
	}

	strict := c.strict
	c.mu.Unlock()

	if strict {
		panic(fmt.Sprintf(
			"controller %q: %s called after Dispose", c.name, op))
	}

	c.logger.Debug("operation on disposed controller ignored",
		"controller", c.name,
		"op", op)

	return false
}

func (c *Controller) notifyStateChange(snap State) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosStateChange,
		Item:   snap,
	})
}

func (c *Controller) endOperation(rec OperationRecord) {
	rec.ID = xid.New().String()
	rec.Controller = c.name

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosOperationEnd,
		Item:   rec,
	})
}

func (c *Controller) fireRejected(current, attempted int) {
	if c.onRejected == nil {
		return
	}

	c.safeCallback("OnRejected", func() {
		c.onRejected(current, attempted)
	})
}

// safeCallback runs a caller-supplied callback. A panic raised by the
// callback is contained here so it cannot corrupt controller invariants; it
// is surfaced through the diagnostic logger only.
func (c *Controller) safeCallback(kind string, f func()) {
	if f == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("callback panicked",
				"controller", c.name,
				"callback", kind,
				"panic", r)
		}
	}()

	f()
}
