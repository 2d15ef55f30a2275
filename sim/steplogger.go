package sim

import "log"

// LogHookBase provides the logger shared by all logging hooks.
type LogHookBase struct {
	Logger *log.Logger
}

// A StepLogger is a hook that prints step and device progress of a
// StepRunner.
type StepLogger struct {
	LogHookBase
}

// NewStepLogger returns a StepLogger writing into the given logger.
func NewStepLogger(logger *log.Logger) *StepLogger {
	h := new(StepLogger)
	h.Logger = logger
	return h
}

// Func writes the progress information into the logger.
func (h *StepLogger) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeStep:
		h.Logger.Printf("step %d", ctx.Item.(int))
	case HookPosBeforeDevice:
		h.Logger.Printf("step %d, %s", ctx.Detail.(int), ctx.Item.(Device).Name())
	}
}
