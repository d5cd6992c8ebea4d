// Package markform is the root entry point for the form-document engine:
// parse a Markdown form document into a typed model, validate it, apply
// patch batches, and serialize it back out. The subpackages under pkg/ hold
// the full surface; this package re-exports the types and operations most
// callers need.
package markform

import (
	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/parser"
	"github.com/jlevy/markform-sub006/pkg/patch"
	"github.com/jlevy/markform-sub006/pkg/serialize"
	"github.com/jlevy/markform-sub006/pkg/summary"
	"github.com/jlevy/markform-sub006/pkg/validate"
)

// ParsedForm is the full document model: schema, responses, notes, docs and
// the raw source the tag regions index into.
type ParsedForm = form.ParsedForm

// Form is the immutable schema half of the model.
type Form = form.Form

// Field is one typed slot in a form.
type Field = form.Field

// Response is a field's current answer state and value.
type Response = form.Response

// Patch is one discrete edit in an apply batch.
type Patch = patch.Patch

// ApplyResult reports the outcome of a patch batch, including recomputed
// summaries and the prioritized issue list.
type ApplyResult = patch.ApplyResult

// Issue is a single validation finding.
type Issue = validate.Issue

// Registry holds externally supplied validators referenced by validate
// attributes.
type Registry = validate.Registry

// SerializeOptions configures Serialize.
type SerializeOptions = serialize.Options

// ReportOptions configures Report.
type ReportOptions = serialize.ReportOptions

// Parse reads a complete document into a ParsedForm.
func Parse(src []byte) (*ParsedForm, error) {
	return parser.Parse(src)
}

// Validate checks the whole document and reports issues plus an overall ok
// flag.
func Validate(f *ParsedForm) ([]Issue, bool) {
	return validate.Validate(f)
}

// DecodePatches reads a JSON patch batch.
func DecodePatches(data []byte) ([]Patch, error) {
	return patch.DecodeBatch(data)
}

// Apply validates and atomically applies a patch batch.
func Apply(f *ParsedForm, patches []Patch) *ApplyResult {
	return patch.Apply(f, patches)
}

// ApplyWith is Apply with externally registered validators.
func ApplyWith(f *ParsedForm, reg *Registry, patches []Patch) *ApplyResult {
	return patch.ApplyWith(f, reg, patches)
}

// Serialize renders the document back to text.
func Serialize(f *ParsedForm, opts SerializeOptions) ([]byte, error) {
	return serialize.Serialize(f, opts)
}

// Report renders the filled form as plain Markdown with directives stripped.
func Report(f *ParsedForm, opts ReportOptions) ([]byte, error) {
	return serialize.Report(f, opts)
}

// Prioritize ranks issues for presentation, hardest-blocking first.
func Prioritize(f *ParsedForm, issues []Issue) []summary.RankedIssue {
	return summary.Prioritize(f.Schema, issues)
}

// Progress computes the answered/valid/filled partitions over all fields.
func Progress(f *ParsedForm) summary.ProgressSummary {
	return summary.Progress(f)
}

// Complete reports whether the document has no blocking issues and every
// required field is answered.
func Complete(f *ParsedForm, issues []Issue) bool {
	return summary.Complete(f, issues)
}
