package validate

import (
	"fmt"

	"github.com/jlevy/markform-sub006/pkg/form"
)

// Context is the read-only view handed to an external validator: the schema,
// the answered values, the target the reference was declared on, and any
// parameters parsed out of the reference.
type Context struct {
	Schema form.Form
	Values map[string]form.Value
	Target string
	Params map[string]string
}

// Func is one externally supplied validator.
type Func func(Context) []Issue

// Registry holds externally registered validators keyed by reference id. The
// engine ships no default entries.
type Registry struct {
	fns map[string]Func
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register installs a validator under an id.
func (r *Registry) Register(id string, fn Func) error {
	if id == "" {
		return fmt.Errorf("validate: validator id is required")
	}
	if fn == nil {
		return fmt.Errorf("validate: validator %q is nil", id)
	}
	if _, dup := r.fns[id]; dup {
		return fmt.Errorf("validate: validator %q already registered", id)
	}
	r.fns[id] = fn
	return nil
}

// run invokes one validator reference. An unknown id is a warning rather than
// a fatal error; a panicking validator is caught and reported as a single
// error issue attributed to it.
func (r *Registry) run(ref form.ValidatorRef, target string, f *form.ParsedForm) (issues []Issue) {
	fn, ok := r.fns[ref.ID]
	if !ok {
		return []Issue{{
			Ref:      target,
			Type:     IssueValidatorFailure,
			Severity: SeverityWarning,
			Msg:      fmt.Sprintf("validator %q is not registered", ref.ID),
		}}
	}

	defer func() {
		if rec := recover(); rec != nil {
			issues = []Issue{{
				Ref:      target,
				Type:     IssueValidatorFailure,
				Severity: SeverityError,
				Msg:      fmt.Sprintf("validator %q panicked: %v", ref.ID, rec),
			}}
		}
	}()

	values := make(map[string]form.Value)
	for id, resp := range f.Responses {
		if resp.Answered() && resp.Value != nil {
			values[id] = resp.Value
		}
	}
	return fn(Context{Schema: f.Schema, Values: values, Target: target, Params: ref.Params})
}
