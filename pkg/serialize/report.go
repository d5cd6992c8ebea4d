package serialize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jlevy/markform-sub006/pkg/form"
)

// ReportOptions configures the plain-Markdown report rendering.
type ReportOptions struct {
	// IncludeNotes adds each field's notes as blockquotes.
	IncludeNotes bool
	// IncludeUnanswered lists unanswered fields with a placeholder
	// instead of dropping them.
	IncludeUnanswered bool
	// SanitizeHTML runs the output through a bluemonday UGC policy,
	// stripping raw HTML that field or note bodies may carry.
	SanitizeHTML bool
}

// Report renders the filled form as plain human-readable Markdown with all
// directive syntax stripped. Fields flagged report=false are omitted, as are
// documentation blocks whose visibility resolves to hidden (instructions by
// default).
func Report(f *form.ParsedForm, opts ReportOptions) ([]byte, error) {
	if f == nil {
		return nil, errors.New("serialize: nil form")
	}
	var b strings.Builder
	schema := f.Schema

	title := schema.Title
	if title == "" {
		title = schema.ID
	}
	b.WriteString("# " + title + "\n")
	if schema.Description != "" {
		b.WriteString("\n" + schema.Description + "\n")
	}
	writeDocs(&b, f, schema.ID)

	for _, group := range schema.Groups {
		if !group.Implicit {
			heading := group.Title
			if heading == "" {
				heading = group.ID
			}
			b.WriteString("\n## " + heading + "\n")
			writeDocs(&b, f, group.ID)
		}
		for _, field := range group.Fields {
			writeFieldReport(&b, f, field, opts)
		}
	}

	out := b.String()
	if opts.SanitizeHTML {
		out = bluemonday.UGCPolicy().Sanitize(out)
	}
	return []byte(out), nil
}

func writeDocs(b *strings.Builder, f *form.ParsedForm, ref string) {
	for _, doc := range f.Docs {
		if doc.Ref == ref && doc.ReportVisible && doc.Body != "" {
			b.WriteString("\n" + doc.Body + "\n")
		}
	}
}

func writeFieldReport(b *strings.Builder, f *form.ParsedForm, field form.Field, opts ReportOptions) {
	if !field.ReportVisibleOrDefault() {
		return
	}
	resp := f.Response(field.ID)
	if resp.State == form.StateUnanswered && !opts.IncludeUnanswered {
		return
	}

	label := field.Label
	if label == "" {
		label = field.ID
	}
	b.WriteString("\n**" + label + "**\n\n")
	writeDocs(b, f, field.ID)

	switch resp.State {
	case form.StateUnanswered:
		b.WriteString("(unanswered)\n")
	case form.StateSkipped, form.StateAborted:
		b.WriteString("*" + form.EncodeSentinel(resp.State, resp.Reason) + "*\n")
	default:
		writeValueReport(b, field, resp.Value)
	}

	if opts.IncludeNotes {
		for _, note := range f.NotesFor(field.ID) {
			b.WriteString("\n> " + note.Role + ": " + strings.ReplaceAll(note.Body, "\n", "\n> ") + "\n")
		}
	}
}

func writeValueReport(b *strings.Builder, field form.Field, value form.Value) {
	switch v := value.(type) {
	case form.Scalar:
		b.WriteString(v.Text + "\n")
	case form.Number:
		b.WriteString(formatFloat(v.Val) + "\n")
	case form.Year:
		b.WriteString(strconv.Itoa(v.Val) + "\n")
	case form.List:
		for _, item := range v.Items {
			b.WriteString("- " + item + "\n")
		}
	case form.Selection:
		b.WriteString(optionLabel(field, v.OptionID) + "\n")
	case form.MultiSelection:
		for _, id := range v.OptionIDs {
			b.WriteString("- " + optionLabel(field, id) + "\n")
		}
	case form.Checkmarks:
		for _, opt := range field.Options {
			state := v.States[opt.ID]
			if state == "" {
				state = form.ZeroCheckState(field.CheckboxMode)
			}
			b.WriteString(fmt.Sprintf("- [%c] %s\n", form.MarkerForState(state), opt.Label))
		}
	case form.TableRows:
		b.WriteString(markdownTable(field.Columns, v.Rows) + "\n")
	}
}

func optionLabel(field form.Field, id string) string {
	if opt, ok := field.Option(id); ok && opt.Label != "" {
		return opt.Label
	}
	return id
}
