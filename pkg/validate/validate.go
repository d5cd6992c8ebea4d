// Package validate inspects a parsed form's declared constraints against its
// current responses. Checks are pure functions, one per field kind; issues
// are data, never errors, and come back alongside a validity flag. External
// validators plug in through Registry.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/jlevy/markform-sub006/pkg/form"
)

const dateLayout = "2006-01-02"

// Validate checks every field against its declared constraints. The boolean
// result is true when no error-severity issue exists.
func Validate(f *form.ParsedForm) ([]Issue, bool) {
	return ValidateWith(f, nil)
}

// ValidateWith additionally runs externally registered validators referenced
// by fields and groups. A nil registry skips the hooks.
func ValidateWith(f *form.ParsedForm, reg *Registry) ([]Issue, bool) {
	var issues []Issue
	for _, group := range f.Schema.Groups {
		for _, field := range group.Fields {
			issues = append(issues, checkField(field, f.Response(field.ID))...)
			if reg != nil {
				for _, ref := range field.Validators {
					issues = append(issues, reg.run(ref, field.ID, f)...)
				}
			}
		}
		if reg != nil {
			for _, ref := range group.Validators {
				issues = append(issues, reg.run(ref, group.ID, f)...)
			}
		}
	}
	return issues, !HasError(issues)
}

// FieldValid reports whether a single field currently has no error issues.
func FieldValid(field form.Field, resp form.Response) bool {
	return !HasError(checkField(field, resp))
}

// EmptyOptionalNotices derives warning notices for optional fields that are
// still untouched. The apply layer folds these into its issue list.
func EmptyOptionalNotices(f *form.ParsedForm) []Issue {
	var out []Issue
	for _, field := range f.Schema.Fields() {
		if field.Required {
			continue
		}
		resp := f.Response(field.ID)
		if resp.State == form.StateUnanswered {
			out = append(out, Issue{
				Ref:      field.ID,
				Type:     IssueOptionalEmpty,
				Severity: SeverityWarning,
				Msg:      fmt.Sprintf("optional field %q is empty", field.ID),
			})
		}
	}
	return out
}

// checkField dispatches on field kind. A required-and-empty field
// short-circuits: once the required violation is reported no further
// constraint checks run.
func checkField(field form.Field, resp form.Response) []Issue {
	if field.Kind == form.KindCheckboxes {
		return checkCheckboxes(field, resp)
	}

	if field.Required && !resp.Filled() {
		return []Issue{{
			Ref:      field.ID,
			Type:     IssueRequiredMissing,
			Severity: SeverityError,
			Required: true,
			Msg:      fmt.Sprintf("field %q is required", field.ID),
		}}
	}
	if !resp.Answered() || resp.Value == nil {
		return nil
	}

	if got := resp.Value.ValueKind(); got != form.ExpectedValueKind(field.Kind) {
		return []Issue{errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q holds a %s value, expected %s", field.ID, got, form.ExpectedValueKind(field.Kind)))}
	}

	switch field.Kind {
	case form.KindString:
		return checkString(field, resp.Value.(form.Scalar))
	case form.KindNumber:
		return checkNumber(field, resp.Value.(form.Number))
	case form.KindYear:
		return checkYear(field, resp.Value.(form.Year))
	case form.KindDate:
		return checkDate(field, resp.Value.(form.Scalar))
	case form.KindURL:
		return checkURLField(field, resp.Value.(form.Scalar))
	case form.KindStringList:
		return checkItemBounds(field, len(resp.Value.(form.List).Items))
	case form.KindURLList:
		return checkURLList(field, resp.Value.(form.List))
	case form.KindSingleSelect:
		return checkSingleSelect(field, resp.Value.(form.Selection))
	case form.KindMultiSelect:
		return checkMultiSelect(field, resp.Value.(form.MultiSelection))
	case form.KindTable:
		return checkTable(field, resp.Value.(form.TableRows))
	}
	return nil
}

func errIssue(field form.Field, typ IssueType, msg string) Issue {
	return Issue{Ref: field.ID, Type: typ, Severity: SeverityError, Required: field.Required, Msg: msg}
}

func warnIssue(field form.Field, typ IssueType, msg string) Issue {
	return Issue{Ref: field.ID, Type: typ, Severity: SeverityWarning, Required: field.Required, Msg: msg}
}

func checkString(field form.Field, v form.Scalar) []Issue {
	var issues []Issue
	length := len([]rune(v.Text))
	if field.MinLength != nil && length < *field.MinLength {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: length %d is below minLength %d", field.ID, length, *field.MinLength)))
	}
	if field.MaxLength != nil && length > *field.MaxLength {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: length %d exceeds maxLength %d", field.ID, length, *field.MaxLength)))
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			issues = append(issues, warnIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: invalid pattern %q", field.ID, field.Pattern)))
		} else if !re.MatchString(v.Text) {
			issues = append(issues, errIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: value does not match pattern %q", field.ID, field.Pattern)))
		}
	}
	return issues
}

func checkNumber(field form.Field, v form.Number) []Issue {
	var issues []Issue
	if field.IntegerOnly && v.Val != math.Trunc(v.Val) {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: %v is not an integer", field.ID, v.Val)))
	}
	if field.Min != nil && v.Val < *field.Min {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: %v is below min %v", field.ID, v.Val, *field.Min)))
	}
	if field.Max != nil && v.Val > *field.Max {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: %v exceeds max %v", field.ID, v.Val, *field.Max)))
	}
	return issues
}

func checkYear(field form.Field, v form.Year) []Issue {
	var issues []Issue
	if field.Min != nil && float64(v.Val) < *field.Min {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: year %d is before %v", field.ID, v.Val, *field.Min)))
	}
	if field.Max != nil && float64(v.Val) > *field.Max {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: year %d is after %v", field.ID, v.Val, *field.Max)))
	}
	return issues
}

func checkDate(field form.Field, v form.Scalar) []Issue {
	if _, err := time.Parse(dateLayout, v.Text); err != nil {
		return []Issue{errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: %q is not a YYYY-MM-DD date", field.ID, v.Text))}
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

func checkURLField(field form.Field, v form.Scalar) []Issue {
	if !validURL(v.Text) {
		return []Issue{errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: %q is not a valid URL", field.ID, v.Text))}
	}
	return nil
}

func checkItemBounds(field form.Field, count int) []Issue {
	var issues []Issue
	if field.MinItems != nil && count < *field.MinItems {
		issues = append(issues, errIssue(field, IssueMinItemsNotMet,
			fmt.Sprintf("field %q: %d items, minItems is %d", field.ID, count, *field.MinItems)))
	}
	if field.MaxItems != nil && count > *field.MaxItems {
		issues = append(issues, errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: %d items, maxItems is %d", field.ID, count, *field.MaxItems)))
	}
	return issues
}

func checkURLList(field form.Field, v form.List) []Issue {
	issues := checkItemBounds(field, len(v.Items))
	for i, item := range v.Items {
		if !validURL(item) {
			issues = append(issues, errIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: item %d (%q) is not a valid URL", field.ID, i+1, item)))
		}
	}
	return issues
}

func checkSingleSelect(field form.Field, v form.Selection) []Issue {
	if _, ok := field.Option(v.OptionID); !ok {
		return []Issue{errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q: unknown option %q", field.ID, v.OptionID))}
	}
	return nil
}

func checkMultiSelect(field form.Field, v form.MultiSelection) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(v.OptionIDs))
	for _, id := range v.OptionIDs {
		if _, ok := field.Option(id); !ok {
			issues = append(issues, errIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: unknown option %q", field.ID, id)))
		}
		if seen[id] {
			issues = append(issues, errIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: option %q selected twice", field.ID, id)))
		}
		seen[id] = true
	}
	return append(issues, checkItemBounds(field, len(v.OptionIDs))...)
}

func checkCheckboxes(field form.Field, resp form.Response) []Issue {
	mode := field.CheckboxMode
	if mode == "" {
		mode = form.CheckboxMulti
	}

	if !resp.Answered() || resp.Value == nil {
		if field.Required {
			return []Issue{{
				Ref:      field.ID,
				Type:     IssueRequiredMissing,
				Severity: SeverityError,
				Required: true,
				Msg:      fmt.Sprintf("field %q is required", field.ID),
			}}
		}
		return nil
	}

	marks, ok := resp.Value.(form.Checkmarks)
	if !ok {
		return []Issue{errIssue(field, IssueValidationError,
			fmt.Sprintf("field %q holds a %s value, expected %s", field.ID, resp.Value.ValueKind(), form.ValueCheckmarks))}
	}

	var issues []Issue
	counts := map[form.CheckState]int{}
	for id, state := range marks.States {
		if _, declared := field.Option(id); !declared {
			issues = append(issues, errIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: unknown option %q", field.ID, id)))
			continue
		}
		if !form.IsLegalCheckState(mode, state) {
			issues = append(issues, errIssue(field, IssueValidationError,
				fmt.Sprintf("field %q: state %q is not legal in %s mode", field.ID, state, mode)))
			continue
		}
		counts[state]++
	}

	// Options absent from the map are in the mode's zero state.
	counts[form.ZeroCheckState(mode)] += len(field.Options) - len(marks.States)

	severity := SeverityWarning
	if field.Required {
		severity = SeverityError
	}
	incomplete := func(msg string) Issue {
		return Issue{Ref: field.ID, Type: IssueCheckboxIncomplete, Severity: severity, Required: field.Required, Msg: msg}
	}

	switch mode {
	case form.CheckboxExplicit:
		if counts[form.CheckUnfilled] > 0 {
			issues = append(issues, incomplete(
				fmt.Sprintf("field %q: %d options still unfilled", field.ID, counts[form.CheckUnfilled])))
		}
	case form.CheckboxSimple:
		if field.Required && counts[form.CheckDone] < len(field.Options) {
			issues = append(issues, incomplete(
				fmt.Sprintf("field %q: %d of %d items done", field.ID, counts[form.CheckDone], len(field.Options))))
		}
	default: // multi
		pending := counts[form.CheckIncomplete] + counts[form.CheckActive]
		if field.Required {
			if pending > 0 {
				issues = append(issues, incomplete(
					fmt.Sprintf("field %q: %d items still in progress", field.ID, pending)))
			}
			if counts[form.CheckDone] == 0 {
				issues = append(issues, incomplete(
					fmt.Sprintf("field %q: no items done", field.ID)))
			}
		} else if pending > 0 {
			issues = append(issues, incomplete(
				fmt.Sprintf("field %q: %d items still in progress", field.ID, pending)))
		}
	}
	return issues
}

func checkTable(field form.Field, v form.TableRows) []Issue {
	issues := checkItemBounds(field, len(v.Rows))
	for rowIdx, row := range v.Rows {
		for colID := range row {
			if _, ok := field.Column(colID); !ok {
				issues = append(issues, errIssue(field, IssueValidationError,
					fmt.Sprintf("field %q: row %d references unknown column %q", field.ID, rowIdx+1, colID)))
			}
		}
		for _, col := range field.Columns {
			cell, present := row[col.ID]
			ref := form.RowRef(field.ID, col.ID, rowIdx)
			if !present {
				issues = append(issues, Issue{Ref: ref, Type: IssueValidationError, Severity: SeverityError,
					Required: field.Required, Msg: fmt.Sprintf("row %d is missing column %q", rowIdx+1, col.ID)})
				continue
			}
			if cell.State != form.CellAnswered {
				if col.Required {
					issues = append(issues, Issue{Ref: ref, Type: IssueValidationError, Severity: SeverityError,
						Required: true, Msg: fmt.Sprintf("required column %q is %s in row %d", col.ID, cell.State, rowIdx+1)})
				}
				continue
			}
			if msg := cellTypeError(col, cell.Text); msg != "" {
				issues = append(issues, Issue{Ref: ref, Type: IssueValidationError, Severity: SeverityError,
					Required: field.Required, Msg: msg})
			}
		}
	}
	return issues
}

func cellTypeError(col form.Column, text string) string {
	switch col.Type {
	case form.ColumnNumber:
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return fmt.Sprintf("column %q: %q is not a number", col.ID, text)
		}
	case form.ColumnYear:
		if _, err := strconv.Atoi(text); err != nil {
			return fmt.Sprintf("column %q: %q is not a year", col.ID, text)
		}
	case form.ColumnDate:
		if _, err := time.Parse(dateLayout, text); err != nil {
			return fmt.Sprintf("column %q: %q is not a YYYY-MM-DD date", col.ID, text)
		}
	case form.ColumnURL:
		if !validURL(text) {
			return fmt.Sprintf("column %q: %q is not a valid URL", col.ID, text)
		}
	}
	return ""
}
