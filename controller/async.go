package controller

import (
	"context"
	"fmt"
)

// TaskFunc is an externally supplied asynchronous task. The controller awaits
// it but never interrupts it; cancellation only suppresses its effect.
type TaskFunc func(ctx context.Context) error

// QuantityTaskFunc is a task that receives the candidate quantity the
// operation is trying to commit.
type QuantityTaskFunc func(ctx context.Context, qty int) error

type startOutcome int

const (
	startOK startOutcome = iota
	startNoop
	startRejected
)

// asyncStart is the decision an operation makes, under the mutex, about
// whether and how to start.
type asyncStart struct {
	target  int
	current int
	outcome startOutcome
}

// SetQuantityAsync clamps value, consults the validation gate with the
// committed quantity, then runs task and commits the value only if this
// operation is still the current generation when the task finishes. With
// optimistic set, the value is shown as the pending display quantity while
// the task runs, and reverted if the task fails.
//
// The call blocks until the task finishes. It returns true only if this
// operation committed authoritatively; rejected, superseded, and failed
// operations return false. Task errors are delivered through the OnError
// callback, never propagated.
func (c *Controller) SetQuantityAsync(
	ctx context.Context,
	value int,
	task TaskFunc,
	optimistic bool,
) bool {
	return c.runAsync(ctx, "SetQuantityAsync",
		func() asyncStart {
			target := c.bounds.Clamp(value)
			if !c.allowLocked(c.qty, target) {
				return asyncStart{
					target: target, current: c.qty,
					outcome: startRejected,
				}
			}

			return asyncStart{target: target, current: c.qty}
		},
		func(ctx context.Context, _ int) error {
			if task == nil {
				return nil
			}

			return task(ctx)
		},
		optimistic)
}

// IncrementAsync computes the candidate from the display quantity plus one
// step, bounds-checks and validates exactly as Increment, then commits it
// through the same generation protocol as SetQuantityAsync. The candidate is
// passed to the task.
func (c *Controller) IncrementAsync(
	ctx context.Context,
	task QuantityTaskFunc,
	optimistic bool,
) bool {
	return c.stepAsync(ctx, "IncrementAsync", +1, task, optimistic)
}

// DecrementAsync is symmetric to IncrementAsync.
func (c *Controller) DecrementAsync(
	ctx context.Context,
	task QuantityTaskFunc,
	optimistic bool,
) bool {
	return c.stepAsync(ctx, "DecrementAsync", -1, task, optimistic)
}

func (c *Controller) stepAsync(
	ctx context.Context,
	op string,
	dir int,
	task QuantityTaskFunc,
	optimistic bool,
) bool {
	return c.runAsync(ctx, op,
		func() asyncStart {
			if c.loading {
				return asyncStart{outcome: startNoop}
			}

			current := c.displayLocked()
			candidate := current + dir*c.bounds.Step

			if !c.bounds.Contains(candidate) {
				return asyncStart{outcome: startNoop}
			}

			if !c.allowLocked(current, candidate) {
				return asyncStart{
					target: candidate, current: current,
					outcome: startRejected,
				}
			}

			return asyncStart{target: candidate, current: current}
		},
		func(ctx context.Context, qty int) error {
			if task == nil {
				return nil
			}

			return task(ctx, qty)
		},
		optimistic)
}

// ResetAsync runs task and, if still current on completion, commits the lower
// bound. It is always non-optimistic: only the loading flag is shown while
// the task runs.
func (c *Controller) ResetAsync(ctx context.Context, task TaskFunc) bool {
	return c.runAsync(ctx, "ResetAsync",
		func() asyncStart {
			return asyncStart{target: c.bounds.Min, current: c.qty}
		},
		func(ctx context.Context, _ int) error {
			if task == nil {
				return nil
			}

			return task(ctx)
		},
		false)
}

// runAsync is the shared generation-protocol lifecycle of all asynchronous
// operations.
func (c *Controller) runAsync(
	ctx context.Context,
	op string,
	compute func() asyncStart,
	task func(context.Context, int) error,
	optimistic bool,
) bool {
	if !c.lockUsable(op) {
		return false
	}

	st := compute()

	switch st.outcome {
	case startNoop:
		c.mu.Unlock()
		return false

	case startRejected:
		c.mu.Unlock()
		c.fireRejected(st.current, st.target)
		c.endOperation(OperationRecord{
			Op: op, FromQty: st.current, ToQty: st.target,
			Outcome: OutcomeRejected,
		})

		return false
	}

	c.generation++
	myGen := c.generation
	prev := c.qty
	c.loading = true

	// A superseded optimistic value must not outlive its generation; this
	// operation owns the pending slot now.
	c.hasPending = false

	if optimistic {
		c.pendingQty = st.target
		c.hasPending = true
	}

	snap := c.stateLocked()
	c.mu.Unlock()

	// One notification batches the optimistic value and the loading flag.
	c.notifyStateChange(snap)

	err := runTask(ctx, task, st.target)

	c.mu.Lock()
	if c.disposed || c.generation != myGen {
		// Superseded while suspended. The completion is non-authoritative:
		// no state change, no notification, no callbacks.
		c.mu.Unlock()
		return false
	}

	committed := false
	fireMax := false
	fireMin := false

	if err == nil {
		c.hasPending = false
		c.qty = st.target
		c.expanded = c.qty > 0
		committed = true
		fireMax = c.bounds.AtMax(c.qty)
		fireMin = c.bounds.AtMin(c.qty)
	} else {
		c.hasPending = false
		if optimistic {
			c.qty = prev
		}
	}

	c.loading = false

	snap = c.stateLocked()
	c.mu.Unlock()

	if err != nil {
		c.fireError(err, OpContext{
			Op: op, Target: st.target, Generation: myGen,
		})
	}

	c.notifyStateChange(snap)

	if fireMax {
		c.safeCallback("OnMaxReached", c.onMaxReached)
	}

	if fireMin {
		c.safeCallback("OnMinReached", c.onMinReached)
	}

	rec := OperationRecord{
		Op: op, FromQty: prev, ToQty: st.target,
		Generation: myGen, Outcome: OutcomeCommitted,
	}
	if err != nil {
		rec.Outcome = OutcomeFailed
		if optimistic {
			rec.Outcome = OutcomeReverted
		}
		rec.Error = err.Error()
	}

	c.endOperation(rec)

	return committed
}

func (c *Controller) fireError(err error, op OpContext) {
	if c.onError == nil {
		c.logger.Error("async task failed",
			"controller", c.name,
			"op", op.Op,
			"target", op.Target,
			"err", err)

		return
	}

	c.safeCallback("OnError", func() {
		c.onError(err, op)
	})
}

// runTask awaits the externally supplied task. A panic inside the task is
// converted into an error so it cannot escape the controller boundary.
func runTask(
	ctx context.Context,
	task func(context.Context, int) error,
	qty int,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return task(ctx, qty)
}
