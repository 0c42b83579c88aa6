package controller

import (
	"log/slog"

	"github.com/rs/xid"

	"github.com/quantkit/quantkit/hooking"
	"github.com/quantkit/quantkit/quantity"
)

// Builder can be used to build quantity controllers.
type Builder struct {
	name    string
	bounds  quantity.Bounds
	initial int
	strict  bool

	validator Validator
	logger    *slog.Logger

	onError      func(err error, op OpContext)
	onMaxReached func()
	onMinReached func()
	onRejected   func(current, attempted int)
}

// MakeBuilder creates a Builder with default bounds [0, 100] and step 1.
func MakeBuilder() Builder {
	return Builder{
		bounds: quantity.Bounds{Min: 0, Max: 100, Step: 1},
	}
}

// WithName sets the controller name. Unnamed controllers get a generated one.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithBounds sets the quantity bounds.
func (b Builder) WithBounds(bounds quantity.Bounds) Builder {
	b.bounds = bounds
	return b
}

// WithInitialQuantity sets the initial quantity. It is clamped into bounds at
// build time.
func (b Builder) WithInitialQuantity(v int) Builder {
	b.initial = v
	return b
}

// WithSnapshot restores bounds and the committed quantity from a snapshot.
// Callbacks are never part of a snapshot and must be re-attached.
func (b Builder) WithSnapshot(s quantity.Snapshot) Builder {
	b.bounds = s.Bounds()
	b.initial = s.Quantity

	return b
}

// WithValidator installs the validation gate.
func (b Builder) WithValidator(v Validator) Builder {
	b.validator = v
	return b
}

// WithStrictMode makes use-after-dispose panic instead of silently no-oping.
// Intended for development and test builds.
func (b Builder) WithStrictMode() Builder {
	b.strict = true
	return b
}

// WithLogger sets the diagnostic logger. Defaults to slog.Default().
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// WithOnError installs the callback that receives task failures.
func (b Builder) WithOnError(f func(err error, op OpContext)) Builder {
	b.onError = f
	return b
}

// WithOnMaxReached installs the callback fired when an operation lands
// exactly on the upper bound.
func (b Builder) WithOnMaxReached(f func()) Builder {
	b.onMaxReached = f
	return b
}

// WithOnMinReached installs the callback fired when an operation lands
// exactly on the lower bound.
func (b Builder) WithOnMinReached(f func()) Builder {
	b.onMinReached = f
	return b
}

// WithOnRejected installs the callback that surfaces validation-gate
// rejections, carrying the current and the attempted quantity.
func (b Builder) WithOnRejected(f func(current, attempted int)) Builder {
	b.onRejected = f
	return b
}

// Build builds the controller. It panics if the bounds are invalid.
func (b Builder) Build() *Controller {
	if err := b.bounds.Validate(); err != nil {
		panic(err)
	}

	name := b.name
	if name == "" {
		name = "QuantityController-" + xid.New().String()
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	qty := b.bounds.Clamp(b.initial)

	return &Controller{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		bounds:       b.bounds,
		qty:          qty,
		expanded:     qty > 0,
		strict:       b.strict,
		validator:    b.validator,
		logger:       logger,
		onError:      b.onError,
		onMaxReached: b.onMaxReached,
		onMinReached: b.onMinReached,
		onRejected:   b.onRejected,
	}
}
