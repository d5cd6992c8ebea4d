package form

import "github.com/jlevy/markform-sub006/pkg/transcode"

// ParsedForm is the full document model produced by one parse: the immutable
// schema plus the mutable responses and notes, the raw canonicalized body the
// tag regions index into, and enough surrounding metadata to reproduce the
// original document.
type ParsedForm struct {
	Frontmatter *Frontmatter
	Schema      Form

	// Responses keys field id to its current response. Every schema field
	// has an entry after parse.
	Responses map[string]Response
	Notes     []Note
	Docs      []DocBlock

	Index   IDIndex
	Regions []TagRegion

	// Source is the post-frontmatter body after canonicalization, the text
	// the tag regions' byte offsets refer to.
	Source []byte
	// FrontmatterRaw is the verbatim frontmatter block including its ---
	// delimiters and trailing newline, empty when the document had none.
	FrontmatterRaw []byte
	// SourceStyle is the directive style the original document used.
	SourceStyle transcode.Style
}

// Response returns the current response for a field id, defaulting to
// unanswered for ids the parser never saw.
func (p *ParsedForm) Response(fieldID string) Response {
	if resp, ok := p.Responses[fieldID]; ok {
		return resp
	}
	return NewResponse()
}

// NotesFor returns the notes attached to a reference, in id order of
// appearance.
func (p *ParsedForm) NotesFor(ref string) []Note {
	var out []Note
	for _, note := range p.Notes {
		if note.Ref == ref {
			out = append(out, note)
		}
	}
	return out
}

// DocFor returns the documentation block for a (ref, tag) pair.
func (p *ParsedForm) DocFor(ref string, tag DocTag) (DocBlock, bool) {
	for _, doc := range p.Docs {
		if doc.Ref == ref && doc.Tag == tag {
			return doc, true
		}
	}
	return DocBlock{}, false
}

// NoteByID returns the note with the given id.
func (p *ParsedForm) NoteByID(id string) (Note, bool) {
	for _, note := range p.Notes {
		if note.ID == id {
			return note, true
		}
	}
	return Note{}, false
}
