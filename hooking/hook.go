// Package hooking provides the observer channel that controllers use to
// broadcast state changes to attached subscribers.
package hooking

// HookPos identifies the lifecycle stage a hook fires from.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered.
type HookCtx struct {
	// Domain is the hookable object that is raising this hook.
	Domain Hookable

	// Pos identifies the lifecycle stage or location the hook is firing from.
	Pos *HookPos

	// Item carries the primary subject associated with the hook (a state
	// snapshot, an operation record).
	Item any

	// Detail holds optional auxiliary data; hook sites may leave it nil.
	Detail any
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook. Registering the same hook twice panics.
	AcceptHook(hook Hook)

	// DetachHook removes a previously registered hook. Detaching a hook that
	// is not attached is a no-op. DetachHook is safe to call from within a
	// hook invocation.
	DetachHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook

	// InvokeHook triggers the registered Hooks.
	InvokeHook(ctx HookCtx)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// NewHookFunc adapts a plain function into a Hook. The returned value has a
// distinct identity, so it can be detached later.
func NewHookFunc(f func(ctx HookCtx)) Hook {
	return &funcHook{f: f}
}

type funcHook struct {
	f func(ctx HookCtx)
}

func (h *funcHook) Func(ctx HookCtx) {
	h.f(ctx)
}

// A HookableBase provides some utility function for other types that
// implement the Hookable interface.
//
// InvokeHook iterates over a snapshot of the hook list, so hooks may attach
// or detach other hooks (or themselves) from inside their Func without
// invalidating the iteration in progress.
type HookableBase struct {
	hookList []Hook
}

// NewHookableBase creates a HookableBase object.
func NewHookableBase() *HookableBase {
	h := new(HookableBase)
	h.hookList = make([]Hook, 0)

	return h
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	for _, registered := range h.hookList {
		if registered == hook {
			panic("duplicated hook")
		}
	}
}

// DetachHook removes a hook. The hook list is rebuilt rather than mutated in
// place so that an InvokeHook already in flight keeps iterating its own
// snapshot.
func (h *HookableBase) DetachHook(hook Hook) {
	newList := make([]Hook, 0, len(h.hookList))
	for _, registered := range h.hookList {
		if registered != hook {
			newList = append(newList, registered)
		}
	}

	h.hookList = newList
}

// InvokeHook triggers the registered Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	snapshot := h.hookList
	for _, hook := range snapshot {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
