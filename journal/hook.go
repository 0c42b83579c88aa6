package journal

import (
	"github.com/quantkit/quantkit/controller"
	"github.com/quantkit/quantkit/hooking"
)

// OperationTable is the table that operation records are written into.
const OperationTable = "controller_operations"

// Hook records finished operations into a Recorder. Attach it to a controller
// with Attach, or to several controllers by calling AcceptHook on each.
type Hook struct {
	recorder Recorder
}

// NewHook creates a Hook writing into the given recorder. The operation table
// is created immediately.
func NewHook(recorder Recorder) *Hook {
	recorder.CreateTable(OperationTable, controller.OperationRecord{})

	return &Hook{recorder: recorder}
}

// Func returns the hook position this hook is interested in.
func (h *Hook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != controller.HookPosOperationEnd {
		return
	}

	rec, ok := ctx.Item.(controller.OperationRecord)
	if !ok {
		return
	}

	h.recorder.InsertData(OperationTable, rec)
}

// Attach subscribes the hook to a controller.
func (h *Hook) Attach(hookable hooking.Hookable) {
	hookable.AcceptHook(h)
}

var _ hooking.Hook = (*Hook)(nil)
