package form

import (
	"regexp"
	"strings"
)

// Sentinels are in-band markers encoding a non-answer state inside a scalar
// payload or table cell: "[skipped]" or "[aborted] (reason text)".
var sentinelRe = regexp.MustCompile(`^\[(skipped|aborted)\](?:\s*\((.*)\))?$`)

// ParseSentinel recognizes a whole payload as a skip/abort sentinel.
func ParseSentinel(payload string) (AnswerState, string, bool) {
	m := sentinelRe.FindStringSubmatch(strings.TrimSpace(payload))
	if m == nil {
		return "", "", false
	}
	state := StateSkipped
	if m[1] == "aborted" {
		state = StateAborted
	}
	return state, strings.TrimSpace(m[2]), true
}

// EncodeSentinel renders the sentinel for a skipped or aborted state. The
// serializer emits these in place of any stale value content.
func EncodeSentinel(state AnswerState, reason string) string {
	tag := "skipped"
	if state == StateAborted {
		tag = "aborted"
	}
	if reason == "" {
		return "[" + tag + "]"
	}
	return "[" + tag + "] (" + reason + ")"
}

// ParseCellText reads one table cell: a sentinel, or answered scalar text.
func ParseCellText(text string) Cell {
	if state, reason, ok := ParseSentinel(text); ok {
		cellState := CellSkipped
		if state == StateAborted {
			cellState = CellAborted
		}
		return Cell{State: cellState, Reason: reason}
	}
	return Cell{State: CellAnswered, Text: strings.TrimSpace(text)}
}

// EncodeCell renders a cell back to its table text.
func EncodeCell(cell Cell) string {
	if cell.State == CellAnswered {
		return cell.Text
	}
	state := StateSkipped
	if cell.State == CellAborted {
		state = StateAborted
	}
	return EncodeSentinel(state, cell.Reason)
}
