package validate

import (
	"strings"
	"testing"

	"github.com/jlevy/markform-sub006/pkg/form"
)

func intPtr(n int) *int          { return &n }
func floatPtr(v float64) *float64 { return &v }

func issuesOfType(issues []Issue, typ IssueType) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Type == typ {
			out = append(out, issue)
		}
	}
	return out
}

func TestRequiredMissingShortCircuits(t *testing.T) {
	field := form.Field{Kind: form.KindString, ID: "name", Required: true, MinLength: intPtr(3)}
	issues := checkField(field, form.NewResponse())
	if len(issues) != 1 {
		t.Fatalf("issues: got %d, want 1", len(issues))
	}
	if issues[0].Type != IssueRequiredMissing || issues[0].Severity != SeverityError || !issues[0].Required {
		t.Fatalf("issue: got %+v", issues[0])
	}
}

func TestStringConstraints(t *testing.T) {
	field := form.Field{Kind: form.KindString, ID: "s", MinLength: intPtr(3), MaxLength: intPtr(5), Pattern: "^[a-z]+$"}

	if issues := checkField(field, form.Answer(form.Scalar{Text: "abcd"})); len(issues) != 0 {
		t.Fatalf("valid value flagged: %+v", issues)
	}
	if issues := checkField(field, form.Answer(form.Scalar{Text: "ab"})); len(issuesOfType(issues, IssueValidationError)) == 0 {
		t.Fatal("minLength violation missed")
	}
	if issues := checkField(field, form.Answer(form.Scalar{Text: "abcdef"})); len(issues) == 0 {
		t.Fatal("maxLength violation missed")
	}
	if issues := checkField(field, form.Answer(form.Scalar{Text: "ABC"})); len(issues) == 0 {
		t.Fatal("pattern violation missed")
	}
}

func TestMinLengthCountsRunes(t *testing.T) {
	field := form.Field{Kind: form.KindString, ID: "s", MinLength: intPtr(3)}
	if issues := checkField(field, form.Answer(form.Scalar{Text: "äöü"})); len(issues) != 0 {
		t.Fatalf("three runes should satisfy minLength 3: %+v", issues)
	}
}

func TestBadPatternIsWarningNotError(t *testing.T) {
	field := form.Field{Kind: form.KindString, ID: "s", Pattern: "("}
	issues := checkField(field, form.Answer(form.Scalar{Text: "x"}))
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Fatalf("issues: got %+v", issues)
	}
}

func TestNumberConstraints(t *testing.T) {
	field := form.Field{Kind: form.KindNumber, ID: "n", Min: floatPtr(1), Max: floatPtr(10), IntegerOnly: true}

	if issues := checkField(field, form.Answer(form.Number{Val: 5})); len(issues) != 0 {
		t.Fatalf("valid number flagged: %+v", issues)
	}
	if issues := checkField(field, form.Answer(form.Number{Val: 5.5})); len(issues) == 0 {
		t.Fatal("integer violation missed")
	}
	if issues := checkField(field, form.Answer(form.Number{Val: 0})); len(issues) == 0 {
		t.Fatal("min violation missed")
	}
	if issues := checkField(field, form.Answer(form.Number{Val: 11})); len(issues) == 0 {
		t.Fatal("max violation missed")
	}
}

func TestDateAndURL(t *testing.T) {
	date := form.Field{Kind: form.KindDate, ID: "d"}
	if issues := checkField(date, form.Answer(form.Scalar{Text: "2024-02-29"})); len(issues) != 0 {
		t.Fatalf("valid date flagged: %+v", issues)
	}
	if issues := checkField(date, form.Answer(form.Scalar{Text: "29/02/2024"})); len(issues) == 0 {
		t.Fatal("bad date missed")
	}

	urlField := form.Field{Kind: form.KindURL, ID: "u"}
	if issues := checkField(urlField, form.Answer(form.Scalar{Text: "https://example.org/x"})); len(issues) != 0 {
		t.Fatalf("valid url flagged: %+v", issues)
	}
	if issues := checkField(urlField, form.Answer(form.Scalar{Text: "not a url"})); len(issues) == 0 {
		t.Fatal("bad url missed")
	}
}

func TestListBounds(t *testing.T) {
	field := form.Field{Kind: form.KindStringList, ID: "l", MinItems: intPtr(2), MaxItems: intPtr(3)}

	issues := checkField(field, form.Answer(form.List{Items: []string{"a"}}))
	if len(issuesOfType(issues, IssueMinItemsNotMet)) != 1 {
		t.Fatalf("minItems issue missing: %+v", issues)
	}
	issues = checkField(field, form.Answer(form.List{Items: []string{"a", "b", "c", "d"}}))
	if len(issuesOfType(issues, IssueValidationError)) != 1 {
		t.Fatalf("maxItems issue missing: %+v", issues)
	}
}

func TestSelectMembership(t *testing.T) {
	field := form.Field{
		Kind:    form.KindMultiSelect,
		ID:      "m",
		Options: []form.Option{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
	}
	issues := checkField(field, form.Answer(form.MultiSelection{OptionIDs: []string{"a", "ghost", "a"}}))
	errs := issuesOfType(issues, IssueValidationError)
	if len(errs) != 2 {
		t.Fatalf("want unknown-option and duplicate issues, got %+v", issues)
	}
}

func TestCheckboxModes(t *testing.T) {
	options := []form.Option{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}

	t.Run("multi required needs progress", func(t *testing.T) {
		field := form.Field{Kind: form.KindCheckboxes, ID: "c", Required: true, CheckboxMode: form.CheckboxMulti, Options: options}
		issues := checkField(field, form.Answer(form.Checkmarks{States: map[string]form.CheckState{
			"a": form.CheckIncomplete,
		}}))
		if len(issuesOfType(issues, IssueCheckboxIncomplete)) == 0 {
			t.Fatalf("in-progress items should block: %+v", issues)
		}
	})

	t.Run("multi optional pending is warning", func(t *testing.T) {
		field := form.Field{Kind: form.KindCheckboxes, ID: "c", CheckboxMode: form.CheckboxMulti, Options: options}
		issues := checkField(field, form.Answer(form.Checkmarks{States: map[string]form.CheckState{
			"a": form.CheckActive,
		}}))
		pending := issuesOfType(issues, IssueCheckboxIncomplete)
		if len(pending) == 0 || pending[0].Severity != SeverityWarning {
			t.Fatalf("expected warning: %+v", issues)
		}
	})

	t.Run("simple required needs all done", func(t *testing.T) {
		field := form.Field{Kind: form.KindCheckboxes, ID: "c", Required: true, CheckboxMode: form.CheckboxSimple, Options: options}
		issues := checkField(field, form.Answer(form.Checkmarks{States: map[string]form.CheckState{
			"a": form.CheckDone,
		}}))
		if len(issuesOfType(issues, IssueCheckboxIncomplete)) == 0 {
			t.Fatalf("partial completion should flag: %+v", issues)
		}
	})

	t.Run("explicit needs every option filled", func(t *testing.T) {
		field := form.Field{Kind: form.KindCheckboxes, ID: "c", Required: true, CheckboxMode: form.CheckboxExplicit, Options: options}
		issues := checkField(field, form.Answer(form.Checkmarks{States: map[string]form.CheckState{
			"a": form.CheckYes,
		}}))
		if len(issuesOfType(issues, IssueCheckboxIncomplete)) == 0 {
			t.Fatalf("unfilled option should flag: %+v", issues)
		}
	})

	t.Run("illegal state for mode", func(t *testing.T) {
		field := form.Field{Kind: form.KindCheckboxes, ID: "c", CheckboxMode: form.CheckboxSimple, Options: options}
		issues := checkField(field, form.Answer(form.Checkmarks{States: map[string]form.CheckState{
			"a": form.CheckIncomplete,
		}}))
		if len(issuesOfType(issues, IssueValidationError)) == 0 {
			t.Fatalf("illegal state missed: %+v", issues)
		}
	})

	t.Run("required unanswered", func(t *testing.T) {
		field := form.Field{Kind: form.KindCheckboxes, ID: "c", Required: true, CheckboxMode: form.CheckboxMulti, Options: options}
		issues := checkField(field, form.NewResponse())
		if len(issuesOfType(issues, IssueRequiredMissing)) != 1 {
			t.Fatalf("required missing not flagged: %+v", issues)
		}
	})
}

func TestTableChecks(t *testing.T) {
	field := form.Field{
		Kind:     form.KindTable,
		ID:       "tbl",
		MinItems: intPtr(2),
		Columns: []form.Column{
			{ID: "name", Label: "Name", Type: form.ColumnString, Required: true},
			{ID: "year", Label: "Year", Type: form.ColumnYear},
		},
	}

	rows := form.TableRows{Rows: []form.Row{
		{
			"name": form.Cell{State: form.CellSkipped},
			"year": form.Cell{State: form.CellAnswered, Text: "not a year"},
		},
	}}
	issues := checkField(field, form.Answer(rows))

	if len(issuesOfType(issues, IssueMinItemsNotMet)) != 1 {
		t.Fatalf("minItems issue missing: %+v", issues)
	}
	var sawRequiredCell, sawTypeError bool
	for _, issue := range issuesOfType(issues, IssueValidationError) {
		if strings.Contains(issue.Ref, "name[0]") {
			sawRequiredCell = true
		}
		if strings.Contains(issue.Msg, "year") || strings.Contains(issue.Ref, "year[0]") {
			sawTypeError = true
		}
	}
	if !sawRequiredCell {
		t.Fatalf("required column skip not flagged: %+v", issues)
	}
	if !sawTypeError {
		t.Fatalf("cell type error not flagged: %+v", issues)
	}
}

func TestRegistryRunsValidators(t *testing.T) {
	f := &form.ParsedForm{
		Schema: form.Form{ID: "f", Groups: []form.Group{{
			Implicit: true,
			Fields: []form.Field{{
				Kind:       form.KindString,
				ID:         "name",
				Validators: []form.ValidatorRef{{ID: "shouty"}},
			}},
		}}},
		Responses: map[string]form.Response{
			"name": form.Answer(form.Scalar{Text: "hello"}),
		},
	}

	reg := NewRegistry()
	if err := reg.Register("shouty", func(ctx Context) []Issue {
		if v, ok := ctx.Values[ctx.Target].(form.Scalar); ok && v.Text != strings.ToUpper(v.Text) {
			return []Issue{{Ref: ctx.Target, Type: IssueValidatorFailure, Severity: SeverityError, Msg: "must be upper case"}}
		}
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	issues, ok := ValidateWith(f, reg)
	if ok {
		t.Fatal("validator failure should clear ok flag")
	}
	if len(issuesOfType(issues, IssueValidatorFailure)) != 1 {
		t.Fatalf("validator issue missing: %+v", issues)
	}
}

func TestRegistryUnknownValidatorIsWarning(t *testing.T) {
	f := &form.ParsedForm{
		Schema: form.Form{ID: "f", Groups: []form.Group{{
			Implicit: true,
			Fields: []form.Field{{
				Kind:       form.KindString,
				ID:         "name",
				Validators: []form.ValidatorRef{{ID: "missing"}},
			}},
		}}},
		Responses: map[string]form.Response{"name": form.Answer(form.Scalar{Text: "x"})},
	}

	issues, ok := ValidateWith(f, NewRegistry())
	if !ok {
		t.Fatalf("unknown validator must not block: %+v", issues)
	}
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Fatalf("issues: got %+v", issues)
	}
}

func TestRegistryRecoversFromPanic(t *testing.T) {
	f := &form.ParsedForm{
		Schema: form.Form{ID: "f", Groups: []form.Group{{
			Implicit: true,
			Fields: []form.Field{{
				Kind:       form.KindString,
				ID:         "name",
				Validators: []form.ValidatorRef{{ID: "explode"}},
			}},
		}}},
		Responses: map[string]form.Response{"name": form.Answer(form.Scalar{Text: "x"})},
	}

	reg := NewRegistry()
	if err := reg.Register("explode", func(Context) []Issue { panic("boom") }); err != nil {
		t.Fatalf("register: %v", err)
	}

	issues, ok := ValidateWith(f, reg)
	if ok {
		t.Fatal("panicking validator should produce an error issue")
	}
	if len(issues) != 1 || issues[0].Severity != SeverityError {
		t.Fatalf("issues: got %+v", issues)
	}
}

func TestEmptyOptionalNotices(t *testing.T) {
	f := &form.ParsedForm{
		Schema: form.Form{ID: "f", Groups: []form.Group{{
			Implicit: true,
			Fields: []form.Field{
				{Kind: form.KindString, ID: "a"},
				{Kind: form.KindString, ID: "b", Required: true},
			},
		}}},
		Responses: map[string]form.Response{},
	}
	notices := EmptyOptionalNotices(f)
	if len(notices) != 1 || notices[0].Ref != "a" || notices[0].Type != IssueOptionalEmpty {
		t.Fatalf("notices: got %+v", notices)
	}
}
