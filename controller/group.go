package controller

import (
	"fmt"
	"sync"

	"github.com/quantkit/quantkit/hooking"
)

// Group coordinates several controllers against a shared total budget. Each
// member's mutations are gated so that the sum of committed quantities stays
// within the budget.
//
// The per-member ceiling is the classic shared-budget formula:
//
//	maxForThis = budget - sum(other members' committed quantities)
//
// When other members already exceed the budget, that ceiling can fall below a
// member's own current quantity. The member's quantity is NOT mutated when
// that happens; the tightened ceiling only gates further mutations. In that
// over-budget window the formula denies decrements too, since any proposed
// value above the ceiling is rejected. This mirrors the widget's historical
// behavior and is covered by tests rather than corrected here.
//
// The group tracks member quantities by observing their state-change hooks,
// so its validator never locks a member controller.
type Group struct {
	mu     sync.Mutex
	budget int
	totals map[string]int
}

// NewGroup creates a group with the given shared budget.
func NewGroup(budget int) *Group {
	if budget <= 0 {
		panic(fmt.Sprintf("controller: group budget %d must be > 0", budget))
	}

	return &Group{
		budget: budget,
		totals: make(map[string]int),
	}
}

// Budget returns the shared budget.
func (g *Group) Budget() int {
	return g.budget
}

// Total returns the sum of the members' committed quantities.
func (g *Group) Total() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.totalLocked()
}

func (g *Group) totalLocked() int {
	total := 0
	for _, qty := range g.totals {
		total += qty
	}

	return total
}

// EffectiveMax returns the budget-derived ceiling for the named member: the
// budget minus what every other member currently holds. It can be below the
// member's own quantity when the group is over budget, and callers should
// clamp it for display rather than mutate the member.
func (g *Group) EffectiveMax(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	others := g.totalLocked() - g.totals[name]

	return g.budget - others
}

// Build builds a member controller from the given builder. The member is
// named, gated by the group's budget validator (chained after any validator
// already on the builder), and observed for quantity changes. Disposing the
// member releases its share of the budget.
func (g *Group) Build(b Builder, name string) *Controller {
	inner := b.validator

	b = b.WithName(name).WithValidator(ValidatorFunc(
		func(current, proposed int) bool {
			if inner != nil && !inner.Allow(current, proposed) {
				return false
			}

			return proposed <= g.EffectiveMax(name)
		}))

	member := b.Build()

	g.mu.Lock()
	if _, taken := g.totals[name]; taken {
		g.mu.Unlock()
		panic(fmt.Sprintf("controller: group member %q already exists", name))
	}
	g.totals[name] = member.Quantity()
	g.mu.Unlock()

	member.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos != HookPosStateChange {
			return
		}

		snap := ctx.Item.(State)

		g.mu.Lock()
		if snap.Disposed {
			delete(g.totals, name)
		} else {
			g.totals[name] = snap.Quantity
		}
		g.mu.Unlock()
	}))

	return member
}
