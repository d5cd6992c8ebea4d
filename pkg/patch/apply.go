package patch

import (
	"fmt"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/summary"
	"github.com/jlevy/markform-sub006/pkg/validate"
)

// Status reports the outcome of a batch.
type Status string

const (
	StatusApplied  Status = "applied"
	StatusRejected Status = "rejected"
)

// Rejection explains one failing patch. For type mismatches it names the
// field's actual kind, and for table fields the valid column ids, so an
// automated caller can self-correct and retry.
type Rejection struct {
	Index     int
	Op        string
	Msg       string
	FieldID   string
	FieldKind form.FieldKind
	ColumnIDs []string
}

// Warning records a coercion the engine performed rather than applying it
// invisibly.
type Warning struct {
	Index int
	Field string
	Msg   string
}

// ApplyResult is the full outcome of one batch: status, the recomputed
// summaries and prioritized issues, the completion flag, and the applied or
// rejected patch lists.
type ApplyResult struct {
	Status     Status
	Applied    []Patch
	Rejections []Rejection
	Warnings   []Warning
	Issues     []summary.RankedIssue
	Structure  summary.StructureSummary
	Progress   summary.ProgressSummary
	Complete   bool
}

// Apply validates and applies a batch without external validators.
func Apply(f *form.ParsedForm, patches []Patch) *ApplyResult {
	return ApplyWith(f, nil, patches)
}

// ApplyWith validates every patch against the pre-batch state; if any fails,
// nothing is applied and the result lists one rejection per failing patch.
// Otherwise all patches apply in order against a private copy of the
// response and note maps, which is committed back only at the end.
func ApplyWith(f *form.ParsedForm, reg *validate.Registry, patches []Patch) *ApplyResult {
	result := &ApplyResult{Status: StatusApplied}

	for i, p := range patches {
		if rej := validatePatch(f, p); rej != nil {
			rej.Index = i
			rej.Op = p.Op()
			result.Rejections = append(result.Rejections, *rej)
		}
	}
	if len(result.Rejections) > 0 {
		result.Status = StatusRejected
	} else {
		responses := form.CloneResponses(f.Responses)
		notes := form.CloneNotes(f.Notes)
		for i, p := range patches {
			notes = applyOne(f, responses, notes, i, p, result)
		}
		f.Responses = responses
		f.Notes = notes
		result.Applied = patches
	}

	issues, _ := validate.ValidateWith(f, reg)
	issues = append(issues, validate.EmptyOptionalNotices(f)...)
	result.Issues = summary.Prioritize(f.Schema, issues)
	result.Structure = summary.Structure(f.Schema)
	result.Progress = summary.Progress(f)
	result.Complete = summary.Complete(f, issues)
	return result
}

func reject(msg string) *Rejection {
	return &Rejection{Msg: msg}
}

func rejectField(field form.Field, msg string) *Rejection {
	r := &Rejection{Msg: msg, FieldID: field.ID, FieldKind: field.Kind}
	if field.Kind == form.KindTable {
		r.ColumnIDs = field.ColumnIDs()
	}
	return r
}

// fieldFor resolves a field and enforces the op/kind match.
func fieldFor(f *form.ParsedForm, fieldID string, want form.FieldKind) (form.Field, *Rejection) {
	if fieldID == "" {
		return form.Field{}, reject("missing field id")
	}
	field, ok := f.Schema.Field(fieldID)
	if !ok {
		return form.Field{}, reject(fmt.Sprintf("unknown field %q", fieldID))
	}
	if want != "" && field.Kind != want {
		return form.Field{}, rejectField(field,
			fmt.Sprintf("field %q has kind %s, not %s", fieldID, field.Kind, want))
	}
	return field, nil
}

func validatePatch(f *form.ParsedForm, p Patch) *Rejection {
	switch op := p.(type) {
	case *SetString:
		_, rej := fieldFor(f, op.Field, form.KindString)
		return rej
	case *SetNumber:
		_, rej := fieldFor(f, op.Field, form.KindNumber)
		return rej
	case *SetStringList:
		_, rej := fieldFor(f, op.Field, form.KindStringList)
		return rej
	case *SetURL:
		_, rej := fieldFor(f, op.Field, form.KindURL)
		return rej
	case *SetURLList:
		_, rej := fieldFor(f, op.Field, form.KindURLList)
		return rej
	case *SetDate:
		_, rej := fieldFor(f, op.Field, form.KindDate)
		return rej
	case *SetYear:
		_, rej := fieldFor(f, op.Field, form.KindYear)
		return rej
	case *SetSingleSelect:
		field, rej := fieldFor(f, op.Field, form.KindSingleSelect)
		if rej != nil {
			return rej
		}
		if op.Option != "" {
			if _, ok := field.Option(op.Option); !ok {
				return rejectField(field, fmt.Sprintf("field %q has no option %q (valid: %v)",
					field.ID, op.Option, field.OptionIDs()))
			}
		}
		return nil
	case *SetMultiSelect:
		field, rej := fieldFor(f, op.Field, form.KindMultiSelect)
		if rej != nil {
			return rej
		}
		for _, id := range op.Options {
			if _, ok := field.Option(id); !ok {
				return rejectField(field, fmt.Sprintf("field %q has no option %q (valid: %v)",
					field.ID, id, field.OptionIDs()))
			}
		}
		return nil
	case *SetCheckboxes:
		field, rej := fieldFor(f, op.Field, form.KindCheckboxes)
		if rej != nil {
			return rej
		}
		if len(op.States) == 0 {
			return rejectField(field, fmt.Sprintf("field %q: no states supplied", field.ID))
		}
		for id, raw := range op.States {
			if _, ok := field.Option(id); !ok {
				return rejectField(field, fmt.Sprintf("field %q has no option %q (valid: %v)",
					field.ID, id, field.OptionIDs()))
			}
			if _, _, err := coerceCheckState(field, raw); err != nil {
				return rejectField(field, fmt.Sprintf("field %q, option %q: %v", field.ID, id, err))
			}
		}
		return nil
	case *SetTable:
		field, rej := fieldFor(f, op.Field, form.KindTable)
		if rej != nil {
			return rej
		}
		for rowIdx, row := range op.Rows {
			for colID, text := range row {
				if _, ok := field.Column(colID); !ok {
					return rejectField(field, fmt.Sprintf("field %q, row %d: unknown column %q (valid: %v)",
						field.ID, rowIdx+1, colID, field.ColumnIDs()))
				}
				if text == "" {
					return rejectField(field, fmt.Sprintf("field %q, row %d, column %q: blank cell; use a skip or abort sentinel",
						field.ID, rowIdx+1, colID))
				}
			}
			// Every declared column needs a cell, or the row would
			// serialize to an unparseable blank.
			for _, colID := range field.ColumnIDs() {
				if _, ok := row[colID]; !ok {
					return rejectField(field, fmt.Sprintf("field %q, row %d: missing column %q; use a skip or abort sentinel (columns: %v)",
						field.ID, rowIdx+1, colID, field.ColumnIDs()))
				}
			}
		}
		return nil
	case *ClearField:
		_, rej := fieldFor(f, op.Field, "")
		return rej
	case *SkipField:
		field, rej := fieldFor(f, op.Field, "")
		if rej != nil {
			return rej
		}
		if field.Required {
			return rejectField(field, fmt.Sprintf("field %q is required and cannot be skipped", field.ID))
		}
		return nil
	case *AbortField:
		_, rej := fieldFor(f, op.Field, "")
		return rej
	case *AddNote:
		if op.Ref == "" {
			return reject("add_note: missing ref")
		}
		if !f.Index.Has(op.Ref) {
			return reject(fmt.Sprintf("add_note: unknown ref %q", op.Ref))
		}
		if op.Body == "" {
			return reject("add_note: empty body")
		}
		if op.ID != "" {
			if _, exists := f.NoteByID(op.ID); exists {
				return reject(fmt.Sprintf("add_note: note %q already exists", op.ID))
			}
		}
		return nil
	case *RemoveNote:
		if op.ID == "" {
			return reject("remove_note: missing id")
		}
		if _, exists := f.NoteByID(op.ID); !exists {
			return reject(fmt.Sprintf("remove_note: no note %q", op.ID))
		}
		return nil
	default:
		return reject(fmt.Sprintf("unsupported patch %T", p))
	}
}

// applyOne mutates the working copies for one already-validated patch and
// returns the (possibly replaced) working note slice.
func applyOne(f *form.ParsedForm, responses map[string]form.Response, notes []form.Note, index int, p Patch, result *ApplyResult) []form.Note {
	switch op := p.(type) {
	case *SetString:
		responses[op.Field] = form.Answer(form.Scalar{Text: op.Value})
	case *SetNumber:
		responses[op.Field] = form.Answer(form.Number{Val: op.Value})
	case *SetStringList:
		if op.coercedScalar {
			result.Warnings = append(result.Warnings, Warning{Index: index, Field: op.Field,
				Msg: "scalar value coerced to a single-element list"})
		}
		responses[op.Field] = form.Answer(form.List{Items: append([]string(nil), op.Items...)})
	case *SetURL:
		responses[op.Field] = form.Answer(form.Scalar{Text: op.Value})
	case *SetURLList:
		if op.coercedScalar {
			result.Warnings = append(result.Warnings, Warning{Index: index, Field: op.Field,
				Msg: "scalar value coerced to a single-element list"})
		}
		responses[op.Field] = form.Answer(form.List{Items: append([]string(nil), op.Items...)})
	case *SetDate:
		responses[op.Field] = form.Answer(form.Scalar{Text: op.Value})
	case *SetYear:
		responses[op.Field] = form.Answer(form.Year{Val: op.Value})
	case *SetSingleSelect:
		if op.Option == "" {
			responses[op.Field] = form.NewResponse()
		} else {
			responses[op.Field] = form.Answer(form.Selection{OptionID: op.Option})
		}
	case *SetMultiSelect:
		responses[op.Field] = form.Answer(form.MultiSelection{OptionIDs: append([]string(nil), op.Options...)})
	case *SetCheckboxes:
		field, _ := f.Schema.Field(op.Field)
		merged := make(map[string]form.CheckState)
		if existing, ok := responses[op.Field].Value.(form.Checkmarks); ok {
			for id, state := range existing.States {
				merged[id] = state
			}
		}
		for id, raw := range op.States {
			state, coerced, _ := coerceCheckState(field, raw)
			if coerced {
				result.Warnings = append(result.Warnings, Warning{Index: index, Field: op.Field,
					Msg: fmt.Sprintf("option %q: boolean coerced to state %q", id, state)})
			}
			merged[id] = state
		}
		responses[op.Field] = form.Answer(form.Checkmarks{States: merged})
	case *SetTable:
		rows := make([]form.Row, 0, len(op.Rows))
		for _, rowIn := range op.Rows {
			row := make(form.Row, len(rowIn))
			for colID, text := range rowIn {
				row[colID] = form.ParseCellText(text)
			}
			rows = append(rows, row)
		}
		responses[op.Field] = form.Answer(form.TableRows{Rows: rows})
	case *ClearField:
		responses[op.Field] = form.NewResponse()
	case *SkipField:
		responses[op.Field] = form.Skip(op.Reason)
	case *AbortField:
		responses[op.Field] = form.Abort(op.Reason)
	case *AddNote:
		id := op.ID
		if id == "" {
			id = form.NextNoteID(notes)
		}
		role := op.Role
		if role == "" {
			role = form.DefaultRole
		}
		notes = append(notes, form.Note{ID: id, Ref: op.Ref, Role: role, Body: op.Body})
	case *RemoveNote:
		kept := notes[:0]
		for _, note := range notes {
			if note.ID != op.ID {
				kept = append(kept, note)
			}
		}
		notes = kept
	}
	return notes
}

// coerceCheckState resolves a wire-level state (string or bool) under the
// field's checkbox mode. Booleans map to done/todo, or yes/no in explicit
// mode, and report coerced=true.
func coerceCheckState(field form.Field, raw any) (form.CheckState, bool, error) {
	mode := field.CheckboxMode
	if mode == "" {
		mode = form.CheckboxMulti
	}
	switch v := raw.(type) {
	case bool:
		if mode == form.CheckboxExplicit {
			if v {
				return form.CheckYes, true, nil
			}
			return form.CheckNo, true, nil
		}
		if v {
			return form.CheckDone, true, nil
		}
		return form.CheckTodo, true, nil
	case string:
		state := form.CheckState(v)
		if !form.IsLegalCheckState(mode, state) {
			return "", false, fmt.Errorf("state %q is not legal in %s mode (legal: %v)",
				v, mode, form.LegalCheckStates(mode))
		}
		return state, false, nil
	case form.CheckState:
		if !form.IsLegalCheckState(mode, v) {
			return "", false, fmt.Errorf("state %q is not legal in %s mode (legal: %v)",
				v, mode, form.LegalCheckStates(mode))
		}
		return v, false, nil
	default:
		return "", false, fmt.Errorf("expected state string or boolean, got %T", raw)
	}
}
