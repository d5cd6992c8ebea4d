package summary

import (
	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/validate"
)

// FieldProgress is one field's slice of the progress summary.
type FieldProgress struct {
	ID     string
	Kind   form.FieldKind
	State  form.AnswerState
	Valid  bool
	Filled bool
	Notes  int
	// CheckStates counts options per state for checkbox fields, including
	// untouched options in the mode's zero state.
	CheckStates map[form.CheckState]int
}

// ProgressSummary folds every field's response into three orthogonal
// partitions. Each partition sums to TotalFields: answer state
// (unanswered/answered/skipped/aborted), validity (valid/invalid), and value
// presence (empty/filled).
type ProgressSummary struct {
	TotalFields int

	Unanswered int
	Answered   int
	Skipped    int
	Aborted    int

	Valid   int
	Invalid int

	Empty  int
	Filled int

	Fields []FieldProgress
}

// Progress computes the progress summary for a parsed form.
func Progress(f *form.ParsedForm) ProgressSummary {
	var p ProgressSummary
	for _, field := range f.Schema.Fields() {
		resp := f.Response(field.ID)
		fp := FieldProgress{
			ID:     field.ID,
			Kind:   field.Kind,
			State:  resp.State,
			Valid:  validate.FieldValid(field, resp),
			Filled: resp.Filled(),
			Notes:  len(f.NotesFor(field.ID)),
		}
		if field.Kind == form.KindCheckboxes {
			fp.CheckStates = checkStateCounts(field, resp)
		}

		p.TotalFields++
		switch resp.State {
		case form.StateAnswered:
			p.Answered++
		case form.StateSkipped:
			p.Skipped++
		case form.StateAborted:
			p.Aborted++
		default:
			p.Unanswered++
		}
		if fp.Valid {
			p.Valid++
		} else {
			p.Invalid++
		}
		if fp.Filled {
			p.Filled++
		} else {
			p.Empty++
		}
		p.Fields = append(p.Fields, fp)
	}
	return p
}

func checkStateCounts(field form.Field, resp form.Response) map[form.CheckState]int {
	mode := field.CheckboxMode
	if mode == "" {
		mode = form.CheckboxMulti
	}
	counts := make(map[form.CheckState]int)
	var states map[string]form.CheckState
	if marks, ok := resp.Value.(form.Checkmarks); ok {
		states = marks.States
	}
	for _, opt := range field.Options {
		state, ok := states[opt.ID]
		if !ok {
			state = form.ZeroCheckState(mode)
		}
		counts[state]++
	}
	return counts
}

// Complete reports whether the form is finished: every required field is
// answered and no error-severity issue remains.
func Complete(f *form.ParsedForm, issues []validate.Issue) bool {
	if validate.HasError(issues) {
		return false
	}
	for _, field := range f.Schema.Fields() {
		if field.Required && f.Response(field.ID).State != form.StateAnswered {
			return false
		}
	}
	return true
}
