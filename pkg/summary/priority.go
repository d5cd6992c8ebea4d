package summary

import (
	"sort"
	"strings"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/validate"
)

// RankedIssue pairs an issue with its computed score and tier (1 highest
// through 5).
type RankedIssue struct {
	validate.Issue
	Score int
	Tier  int
}

// issueTypeScore is the fixed score table. Checkbox-incomplete issues on a
// required field get one extra point on top of the base score.
func issueTypeScore(issue validate.Issue) int {
	switch issue.Type {
	case validate.IssueRequiredMissing:
		return 3
	case validate.IssueValidationError, validate.IssueValidatorFailure:
		return 2
	case validate.IssueCheckboxIncomplete:
		if issue.Required {
			return 3
		}
		return 2
	case validate.IssueMinItemsNotMet:
		return 2
	case validate.IssueOptionalEmpty:
		return 1
	default:
		return 1
	}
}

func scoreToTier(score int) int {
	switch {
	case score >= 5:
		return 1
	case score >= 4:
		return 2
	case score >= 3:
		return 3
	case score >= 2:
		return 4
	default:
		return 5
	}
}

// fieldWeight resolves the priority weight of the field an issue points at.
// Qualified references fall back to their field prefix; non-field references
// weigh medium.
func fieldWeight(schema form.Form, ref string) int {
	fieldID := ref
	if i := strings.IndexByte(fieldID, '.'); i >= 0 {
		fieldID = fieldID[:i]
	}
	if field, ok := schema.Field(fieldID); ok {
		return field.Priority.Weight()
	}
	return form.PriorityMedium.Weight()
}

// Prioritize assigns each issue a tier and returns the deterministic
// presentation order: ascending tier, required before recommended, then
// descending raw score, then lexicographic reference.
func Prioritize(schema form.Form, issues []validate.Issue) []RankedIssue {
	ranked := make([]RankedIssue, 0, len(issues))
	for _, issue := range issues {
		score := fieldWeight(schema, issue.Ref) + issueTypeScore(issue)
		ranked = append(ranked, RankedIssue{Issue: issue, Score: score, Tier: scoreToTier(score)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.Required != b.Required {
			return a.Required
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Ref < b.Ref
	})
	return ranked
}
