package transport

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain *Transporter
	Pos    *HookPos
	Detail interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// HookPosBeforeRound triggers before a scheduling round classifies the batch.
// The Detail is a RoundStats of the upcoming round with only Round and Active
// filled in.
var HookPosBeforeRound = &HookPos{Name: "BeforeRound"}

// HookPosAfterRound triggers after a round re-sorts the batch. The Detail is
// the RoundStats of the round just finished.
var HookPosAfterRound = &HookPos{Name: "AfterRound"}

// HookPosTransportEnd triggers once all slots are retired. The Detail is the
// Summary of the run.
var HookPosTransportEnd = &HookPos{Name: "TransportEnd"}

// Hook is a short piece of program that can be invoked by a hookable object.
// Hooks are always invoked from the scheduling goroutine, never from the
// per-slot workers.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
