package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Engine validates, routes, and normalizes operation calls. It holds no
// mutable state beyond the read-only registry and may be shared across
// goroutines freely. The engine performs no retries: handlers cause
// external side effects, so a single failure is a single reported
// failure, and two identical calls are two external operations.
type Engine struct {
	registry *Registry
	logger   *zap.Logger
}

// NewEngine creates an engine over a populated registry. A nil logger
// disables dispatch logging.
func NewEngine(registry *Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{registry: registry, logger: logger}
}

// Registry exposes the engine's read-only operation registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Dispatch looks up the operation, validates the raw bag, and invokes
// the bound handler. Validation and lookup errors are reported before
// any external side effect; handler errors and panics are caught at
// this boundary and never leak to the caller.
//
// Every dispatch attempt is logged with masked arguments, whether it
// succeeds, fails validation, or names an unknown operation.
func (e *Engine) Dispatch(ctx context.Context, name string, raw Args) Result {
	op, ok := e.registry.Lookup(name)
	if !ok {
		e.logger.Warn("dispatch attempt for unknown operation",
			zap.String("operation", name),
		)
		return Fail(FailUnknownOperation, "unknown operation %q", name)
	}

	masked := op.MaskedArgs(raw)
	e.logger.Info("dispatch attempt",
		zap.String("operation", name),
		zap.Any("arguments", masked),
	)

	validated, verr := op.Validate(raw)
	if verr != nil {
		e.logger.Warn("argument validation failed",
			zap.String("operation", name),
			zap.String("parameter", verr.Parameter),
			zap.String("reason", verr.Reason),
		)
		return Fail(FailInvalidArgument, "%s", verr.Error())
	}

	payload, err := e.invoke(ctx, op, validated)
	if err != nil {
		e.logger.Error("handler failed",
			zap.String("operation", name),
			zap.Error(err),
		)
		return Fail(FailHandlerError, "%s", err.Error())
	}

	e.logger.Info("dispatch succeeded", zap.String("operation", name))
	return Succeed(payload)
}

// invoke calls the handler with panic containment. A panicking handler
// must surface as a handler_error, not crash the process.
func (e *Engine) invoke(ctx context.Context, op *Operation, args *Validated) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return op.Handler.Handle(ctx, args)
}
