// Package dispatch routes model-requested operations to their handlers.
// It owns the operation registry, argument validation, and the normalized
// result envelope. The registry is populated once at startup and read-only
// afterwards, so Dispatch is safe for concurrent use without locking.
package dispatch

import (
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/sema-ai/commsgate/internal/masking"
)

// ParamClass is the tagged variant describing how a parameter is
// validated and canonicalized. One validator per class is the single
// source of truth for format rules.
type ParamClass int

const (
	ClassText ParamClass = iota
	ClassPhone
	ClassCurrency
	ClassAmount
	ClassBundle
	ClassPlan
	ClassURL
	ClassVoice
	ClassMedia
	ClassLanguage
	ClassInt
	ClassBool
)

// String returns the lowercase class name.
func (c ParamClass) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassPhone:
		return "phone"
	case ClassCurrency:
		return "currency"
	case ClassAmount:
		return "amount"
	case ClassBundle:
		return "bundle"
	case ClassPlan:
		return "plan"
	case ClassURL:
		return "url"
	case ClassVoice:
		return "voice"
	case ClassMedia:
		return "media"
	case ClassLanguage:
		return "language"
	case ClassInt:
		return "int"
	case ClassBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Param describes one operation parameter.
type Param struct {
	Name     string
	Class    ParamClass
	Required bool

	// Default is applied when an optional parameter is absent. Must
	// already be in canonical form for the class.
	Default any

	// Secret marks credential-like values that must be masked in logs
	// even though their class carries no PII of its own.
	Secret bool
}

// Operation is an immutable descriptor for one callable action: a unique
// name, an ordered parameter schema, and the bound handler.
type Operation struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler

	// Sensitive operations cause external side effects (money, messages)
	// and are subject to rate limiting at the serving layer.
	Sensitive bool

	schema *jsonschema.Schema // compiled argument-shape schema, set at Register
}

// Registry maps operation name to its descriptor. Register rejects
// duplicates so the operation set stays closed and statically known.
type Registry struct {
	ops map[string]*Operation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Register adds an operation to the registry. It compiles the operation's
// argument-shape schema up front so no compilation happens per request.
func (r *Registry) Register(op Operation) error {
	if op.Name == "" {
		return fmt.Errorf("dispatch: operation name must not be empty")
	}
	if op.Handler == nil {
		return fmt.Errorf("dispatch: operation %q has no handler", op.Name)
	}
	if _, exists := r.ops[op.Name]; exists {
		return fmt.Errorf("dispatch: operation %q already registered", op.Name)
	}
	seen := make(map[string]bool, len(op.Params))
	for _, p := range op.Params {
		if p.Name == "" {
			return fmt.Errorf("dispatch: operation %q has an unnamed parameter", op.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("dispatch: operation %q declares parameter %q twice", op.Name, p.Name)
		}
		seen[p.Name] = true
	}

	sch, err := compileArgumentSchema(&op)
	if err != nil {
		return fmt.Errorf("dispatch: operation %q schema: %w", op.Name, err)
	}
	op.schema = sch

	r.ops[op.Name] = &op
	return nil
}

// MustRegister is Register for startup wiring, where a bad descriptor is a
// programming error.
func (r *Registry) MustRegister(op Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Lookup returns the operation for name, read-only.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaskedArgs renders the raw argument bag as loggable strings with
// phone-class and secret-marked parameters masked. This is the only
// form of arguments that may enter logs or audit records.
func (op *Operation) MaskedArgs(raw Args) map[string]string {
	return masking.MaskAll(LoggableArgs(raw), op.maskedParams())
}

// maskedParams returns the names of parameters whose values must be
// masked in observability output (phone-class and secret-marked).
func (op *Operation) maskedParams() []string {
	var names []string
	for _, p := range op.Params {
		if p.Class == ClassPhone || p.Secret {
			names = append(names, p.Name)
		}
	}
	return names
}
