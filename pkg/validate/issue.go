package validate

// Severity grades an issue. Only error-severity issues make a form invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueType classifies an issue for prioritization. The fixed score table in
// pkg/summary keys off these values.
type IssueType string

const (
	IssueRequiredMissing    IssueType = "required_missing"
	IssueValidationError    IssueType = "validation_error"
	IssueCheckboxIncomplete IssueType = "checkbox_incomplete"
	IssueMinItemsNotMet     IssueType = "min_items_not_met"
	IssueOptionalEmpty      IssueType = "optional_empty"
	IssueValidatorFailure   IssueType = "validator_failure"
)

// Issue is one structured report of a validation failure or incompleteness.
// Required marks issues stemming from a required field; prioritization ranks
// those ahead of recommended ones at equal tier.
type Issue struct {
	Ref      string
	Type     IssueType
	Severity Severity
	Required bool
	Msg      string
}

// HasError reports whether any issue is error severity.
func HasError(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ForRef filters issues attached to one reference.
func ForRef(issues []Issue, ref string) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Ref == ref {
			out = append(out, issue)
		}
	}
	return out
}
