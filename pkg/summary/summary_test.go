package summary

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/validate"
)

func sampleForm() *form.ParsedForm {
	return &form.ParsedForm{
		Schema: form.Form{ID: "f", Groups: []form.Group{
			{Implicit: true, Fields: []form.Field{
				{Kind: form.KindString, ID: "name", Required: true, Priority: form.PriorityHigh},
			}},
			{ID: "g", Fields: []form.Field{
				{Kind: form.KindNumber, ID: "count", Priority: form.PriorityLow},
				{Kind: form.KindCheckboxes, ID: "tasks", CheckboxMode: form.CheckboxMulti,
					Options: []form.Option{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}},
			}},
		}},
		Responses: map[string]form.Response{
			"name":  form.Answer(form.Scalar{Text: "Ada"}),
			"count": form.Skip("not relevant"),
			"tasks": form.Answer(form.Checkmarks{States: map[string]form.CheckState{"a": form.CheckDone}}),
		},
	}
}

func TestStructure(t *testing.T) {
	s := Structure(sampleForm().Schema)

	if s.TotalGroups != 1 {
		t.Fatalf("groups: got %d, want 1 (implicit groups are not counted)", s.TotalGroups)
	}
	if s.TotalFields != 3 || s.TotalOptions != 2 || s.TotalColumns != 0 {
		t.Fatalf("counts: got %+v", s)
	}
	if s.FieldsByKind[form.KindCheckboxes] != 1 {
		t.Fatalf("by kind: got %+v", s.FieldsByKind)
	}
	if s.Index["tasks.a"] != form.NodeOption || s.Index["g"] != form.NodeGroup {
		t.Fatalf("index: got %+v", s.Index)
	}
}

func TestProgressPartitionsSum(t *testing.T) {
	p := Progress(sampleForm())

	if p.TotalFields != 3 {
		t.Fatalf("total: got %d", p.TotalFields)
	}
	if got := p.Unanswered + p.Answered + p.Skipped + p.Aborted; got != p.TotalFields {
		t.Fatalf("answer partition sums to %d", got)
	}
	if got := p.Valid + p.Invalid; got != p.TotalFields {
		t.Fatalf("validity partition sums to %d", got)
	}
	if got := p.Empty + p.Filled; got != p.TotalFields {
		t.Fatalf("presence partition sums to %d", got)
	}
	if p.Answered != 2 || p.Skipped != 1 {
		t.Fatalf("states: got %+v", p)
	}
}

func TestProgressCheckStates(t *testing.T) {
	p := Progress(sampleForm())
	var tasks *FieldProgress
	for i := range p.Fields {
		if p.Fields[i].ID == "tasks" {
			tasks = &p.Fields[i]
		}
	}
	if tasks == nil {
		t.Fatal("missing tasks progress")
	}
	want := map[form.CheckState]int{form.CheckDone: 1, form.CheckTodo: 1}
	if diff := cmp.Diff(want, tasks.CheckStates); diff != "" {
		t.Fatalf("check states:\n%s", diff)
	}
}

func TestComplete(t *testing.T) {
	f := sampleForm()
	issues, _ := validate.Validate(f)
	if !Complete(f, issues) {
		t.Fatalf("form should be complete: %+v", issues)
	}

	f.Responses["name"] = form.NewResponse()
	issues, _ = validate.Validate(f)
	if Complete(f, issues) {
		t.Fatal("missing required answer should block completion")
	}
}

func TestPrioritizeScoring(t *testing.T) {
	schema := sampleForm().Schema
	issues := []validate.Issue{
		{Ref: "count", Type: validate.IssueOptionalEmpty, Severity: validate.SeverityWarning},
		{Ref: "name", Type: validate.IssueRequiredMissing, Severity: validate.SeverityError, Required: true},
		{Ref: "tasks", Type: validate.IssueCheckboxIncomplete, Severity: validate.SeverityWarning},
	}
	ranked := Prioritize(schema, issues)

	// name: high priority (3) + required_missing (3) = 6 -> tier 1.
	if ranked[0].Ref != "name" || ranked[0].Score != 6 || ranked[0].Tier != 1 {
		t.Fatalf("first: got %+v", ranked[0])
	}
	// tasks: medium (2) + checkbox_incomplete (2) = 4 -> tier 2.
	if ranked[1].Ref != "tasks" || ranked[1].Score != 4 || ranked[1].Tier != 2 {
		t.Fatalf("second: got %+v", ranked[1])
	}
	// count: low (1) + optional_empty (1) = 2 -> tier 4.
	if ranked[2].Ref != "count" || ranked[2].Score != 2 || ranked[2].Tier != 4 {
		t.Fatalf("third: got %+v", ranked[2])
	}
}

func TestPrioritizeIsDeterministic(t *testing.T) {
	schema := sampleForm().Schema
	issues := []validate.Issue{
		{Ref: "tasks", Type: validate.IssueCheckboxIncomplete},
		{Ref: "count", Type: validate.IssueCheckboxIncomplete, Required: false},
	}
	a := Prioritize(schema, issues)
	b := Prioritize(schema, append([]validate.Issue(nil), issues...))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("ranking not deterministic:\n%s", diff)
	}
}

func TestPrioritizeTieBreaksByRef(t *testing.T) {
	schema := form.Form{ID: "f", Groups: []form.Group{{Implicit: true, Fields: []form.Field{
		{Kind: form.KindString, ID: "alpha"},
		{Kind: form.KindString, ID: "beta"},
	}}}}
	issues := []validate.Issue{
		{Ref: "beta", Type: validate.IssueValidationError},
		{Ref: "alpha", Type: validate.IssueValidationError},
	}
	ranked := Prioritize(schema, issues)
	if ranked[0].Ref != "alpha" || ranked[1].Ref != "beta" {
		t.Fatalf("tie break order: got %s, %s", ranked[0].Ref, ranked[1].Ref)
	}
}
