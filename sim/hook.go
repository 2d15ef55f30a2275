package sim

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookPosRunStart triggers once when a run starts, after storage activation.
var HookPosRunStart = &HookPos{Name: "RunStart"}

// HookPosRunEnd triggers once when a run finishes, before storage release.
var HookPosRunEnd = &HookPos{Name: "RunEnd"}

// HookPosBeforeStep triggers before the first device of a step executes.
var HookPosBeforeStep = &HookPos{Name: "BeforeStep"}

// HookPosAfterStep triggers after all state buffers of a step committed.
var HookPosAfterStep = &HookPos{Name: "AfterStep"}

// HookPosBeforeDevice triggers before one device executes within a step.
var HookPosBeforeDevice = &HookPos{Name: "BeforeDevice"}

// HookPosAfterDevice triggers after one device executed within a step.
var HookPosAfterDevice = &HookPos{Name: "AfterDevice"}

// HookCtx is the context that holds all the information about the site that
// a hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if the hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides utility functions for types that implement the
// Hookable interface.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook triggers the registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
