package controller

// Validator is the gate consulted before a mutation takes effect. Allow
// receives the quantity the mutation starts from and the quantity it wants to
// commit, and returns whether the mutation may proceed. A Validator must be
// a pure predicate: it must not call back into the controller.
type Validator interface {
	Allow(current, proposed int) bool
}

// ValidatorFunc adapts a plain function into a Validator.
type ValidatorFunc func(current, proposed int) bool

// Allow calls the wrapped function.
func (f ValidatorFunc) Allow(current, proposed int) bool {
	return f(current, proposed)
}
