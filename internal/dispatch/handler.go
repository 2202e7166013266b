package dispatch

import "context"

// Handler performs an operation's external side effect. Implementations
// must be safe for concurrent invocation and should respect ctx for
// cancellation — a caller-supplied deadline wraps the handler boundary,
// not the engine's own validation and routing.
//
// The returned payload must be JSON-serializable. A returned error is
// normalized by the engine into a handler_error failure; it never
// propagates as a fault out of Dispatch.
type Handler interface {
	Handle(ctx context.Context, args *Validated) (any, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, args *Validated) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, args *Validated) (any, error) {
	return f(ctx, args)
}
