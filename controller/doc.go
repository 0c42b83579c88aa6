// Package controller implements the quantity operation controller: the single
// authority over a bounded integer quantity that mediates synchronous and
// asynchronous mutation requests against it.
//
// A Controller owns its state exclusively. External code reads it through
// State() and mutates it only through the operations. All operations are
// serialized by an internal mutex, so the controller behaves as if driven by
// one cooperative scheduler: no two operations overlap, except that an
// asynchronous operation releases the mutex while its task runs. That release
// is the only suspension point, and it is where other operations may run and
// supersede the suspended one.
//
// Supersession is cooperative and keyed by a generation counter. Every
// asynchronous operation mints a new generation when it starts; when its task
// finishes, the operation commits only if its generation is still current.
// A later operation (sync or async), CancelOperation, or Dispose advances the
// generation, turning every earlier in-flight operation into a stale one
// whose completion is silently discarded. The task itself is never
// interrupted; only its effect on controller state is suppressed. The most
// recently started operation always wins, regardless of completion order.
//
// Observers attach through the hooking interface. Every operation that
// changes observable state raises HookPosStateChange exactly once, with a
// State snapshot as the item. Hooks are invoked outside the controller mutex,
// so a hook may call back into the controller; it should re-read State()
// rather than trusting a snapshot across reentrant calls.
package controller
