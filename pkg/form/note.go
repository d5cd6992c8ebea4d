package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Note is a free-text annotation attached to any identifier in the document:
// a field, group, form, or qualified option/column reference.
type Note struct {
	ID   string
	Ref  string
	Role string
	Body string
}

// NoteIDPrefix prefixes every generated note identifier.
const NoteIDPrefix = "n"

// NextNoteID scans the existing note ids and returns the smallest unused
// generated id ("n1", "n2", ...). Non-generated ids are ignored.
func NextNoteID(notes []Note) string {
	used := make(map[int]bool, len(notes))
	for _, note := range notes {
		suffix := strings.TrimPrefix(note.ID, NoteIDPrefix)
		if suffix == note.ID {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			used[n] = true
		}
	}
	for i := 1; ; i++ {
		if !used[i] {
			return fmt.Sprintf("%s%d", NoteIDPrefix, i)
		}
	}
}

// CloneNotes copies a note slice for transactional mutation.
func CloneNotes(in []Note) []Note {
	if in == nil {
		return nil
	}
	return append([]Note(nil), in...)
}

// DocTag classifies a documentation block.
type DocTag string

const (
	DocDescription   DocTag = "description"
	DocInstructions  DocTag = "instructions"
	DocDocumentation DocTag = "documentation"
)

// IsValidDocTag reports whether t names a documentation block tag.
func IsValidDocTag(t DocTag) bool {
	switch t {
	case DocDescription, DocInstructions, DocDocumentation:
		return true
	}
	return false
}

// DocBlock is a block of explanatory text attached to an identifier. At most
// one block may exist per (ref, tag) pair.
type DocBlock struct {
	Tag           DocTag
	Ref           string
	Body          string
	ReportVisible bool
}

// DefaultReportVisible returns the default visibility for a tag: instructions
// are excluded from reports, everything else is included.
func DefaultReportVisible(tag DocTag) bool {
	return tag != DocInstructions
}
