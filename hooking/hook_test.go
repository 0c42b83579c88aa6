package hooking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHook struct {
	calls int
	last  HookCtx
}

func (h *countingHook) Func(ctx HookCtx) {
	h.calls++
	h.last = ctx
}

func TestAcceptAndInvoke(t *testing.T) {
	hb := NewHookableBase()
	hook := &countingHook{}

	hb.AcceptHook(hook)
	require.Equal(t, 1, hb.NumHooks())

	pos := &HookPos{Name: "StateChange"}
	hb.InvokeHook(HookCtx{Domain: hb, Pos: pos, Item: 42})

	assert.Equal(t, 1, hook.calls)
	assert.Equal(t, pos, hook.last.Pos)
	assert.Equal(t, 42, hook.last.Item)
}

func TestDuplicatedHookPanics(t *testing.T) {
	hb := NewHookableBase()
	hook := &countingHook{}

	hb.AcceptHook(hook)

	assert.Panics(t, func() {
		hb.AcceptHook(hook)
	})
}

func TestDetachHook(t *testing.T) {
	hb := NewHookableBase()
	hook1 := &countingHook{}
	hook2 := &countingHook{}

	hb.AcceptHook(hook1)
	hb.AcceptHook(hook2)
	hb.DetachHook(hook1)

	require.Equal(t, 1, hb.NumHooks())

	hb.InvokeHook(HookCtx{})

	assert.Equal(t, 0, hook1.calls)
	assert.Equal(t, 1, hook2.calls)
}

func TestDetachUnknownHookIsNoOp(t *testing.T) {
	hb := NewHookableBase()
	hb.AcceptHook(&countingHook{})

	hb.DetachHook(&countingHook{})

	assert.Equal(t, 1, hb.NumHooks())
}

func TestDetachSelfDuringInvoke(t *testing.T) {
	hb := NewHookableBase()

	after := &countingHook{}

	var selfRemoving Hook
	selfRemoving = NewHookFunc(func(_ HookCtx) {
		hb.DetachHook(selfRemoving)
	})

	hb.AcceptHook(selfRemoving)
	hb.AcceptHook(after)

	hb.InvokeHook(HookCtx{})

	// The hook behind the self-removing one must still run in the same pass.
	assert.Equal(t, 1, after.calls)
	assert.Equal(t, 1, hb.NumHooks())

	hb.InvokeHook(HookCtx{})
	assert.Equal(t, 2, after.calls)
}

func TestAttachDuringInvokeDoesNotFireInSamePass(t *testing.T) {
	hb := NewHookableBase()

	late := &countingHook{}
	attached := false
	hb.AcceptHook(NewHookFunc(func(_ HookCtx) {
		if !attached {
			attached = true
			hb.AcceptHook(late)
		}
	}))

	hb.InvokeHook(HookCtx{})
	assert.Equal(t, 0, late.calls)

	hb.InvokeHook(HookCtx{})
	assert.Equal(t, 1, late.calls)
}
