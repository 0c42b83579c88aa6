// Package quantity provides the bounded integer value type that the
// operation controller owns, together with its serializable snapshot form.
package quantity

import "fmt"

// Bounds describes the closed range and step size of a bounded quantity.
type Bounds struct {
	Min  int
	Max  int
	Step int
}

// Validate returns an error if the bounds are not usable. The floor must be
// non-negative, the ceiling strictly above the floor, and the step positive.
func (b Bounds) Validate() error {
	if b.Min < 0 {
		return fmt.Errorf("quantity: min %d must be >= 0", b.Min)
	}

	if b.Max <= b.Min {
		return fmt.Errorf("quantity: max %d must be > min %d", b.Max, b.Min)
	}

	if b.Step <= 0 {
		return fmt.Errorf("quantity: step %d must be > 0", b.Step)
	}

	return nil
}

// Clamp forces v into [Min, Max].
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}

	if v > b.Max {
		return b.Max
	}

	return v
}

// Contains reports whether v lies within [Min, Max].
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// AtMin reports whether v sits on the floor.
func (b Bounds) AtMin(v int) bool {
	return v <= b.Min
}

// AtMax reports whether v sits on the ceiling.
func (b Bounds) AtMax(v int) bool {
	return v >= b.Max
}

// SeedValue is the quantity an expand operation lands on when the current
// quantity is zero. It is the larger of the floor and one step, clamped.
func (b Bounds) SeedValue() int {
	seed := b.Min
	if b.Step > seed {
		seed = b.Step
	}

	return b.Clamp(seed)
}

// Snapshot is the persistable view of a controller-owned quantity. Callbacks
// and in-flight operation state are deliberately not part of it; restoring a
// snapshot recovers only the bounds and the committed quantity.
type Snapshot struct {
	Quantity int  `json:"quantity"`
	Min      int  `json:"min_quantity"`
	Max      int  `json:"max_quantity"`
	Step     int  `json:"step"`
	Expanded bool `json:"is_expanded"`
	Loading  bool `json:"is_loading"`
}

// Bounds extracts the Bounds portion of the snapshot.
func (s Snapshot) Bounds() Bounds {
	return Bounds{Min: s.Min, Max: s.Max, Step: s.Step}
}
