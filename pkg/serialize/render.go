package serialize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/mdast"
)

// attr is one rendered key=value pair.
type attr struct {
	key   string
	value string
}

// renderTag emits an open or self-closing directive line. Attributes keep
// their given order; callers pass them pre-sorted canonically.
func renderTag(tag string, attrs []attr, selfClose bool) string {
	var b strings.Builder
	b.WriteString("{% ")
	b.WriteString(tag)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.key)
		b.WriteByte('=')
		b.WriteString(mdast.QuoteAttr(a.value))
	}
	if selfClose {
		b.WriteString(" /%}")
	} else {
		b.WriteString(" %}")
	}
	return b.String()
}

func closeTag(tag string) string {
	return "{% /" + tag + " %}"
}

// sortTail orders the attributes after the fixed kind/id/role prefix
// alphabetically, so canonical output is deterministic.
func sortTail(attrs []attr) {
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].key < attrs[j].key })
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func renderValidators(refs []form.ValidatorRef) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		if len(ref.Params) == 0 {
			parts = append(parts, ref.ID)
			continue
		}
		keys := make([]string, 0, len(ref.Params))
		for k := range ref.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+ref.Params[k])
		}
		parts = append(parts, ref.ID+"("+strings.Join(pairs, ",")+")")
	}
	return strings.Join(parts, " ")
}

// fieldAttrs builds a field's canonical attribute list: kind and id first,
// role third when not the default, then everything else alphabetically with
// default values omitted.
func fieldAttrs(field form.Field) []attr {
	attrs := []attr{
		{"kind", string(field.Kind)},
		{"id", field.ID},
	}
	if field.Role != "" && field.Role != form.DefaultRole {
		attrs = append(attrs, attr{"role", field.Role})
	}

	var tail []attr
	if field.Required && !(field.Kind == form.KindCheckboxes && field.CheckboxMode == form.CheckboxExplicit) {
		tail = append(tail, attr{"required", "true"})
	}
	if field.Priority != "" && field.Priority != form.PriorityMedium {
		tail = append(tail, attr{"priority", string(field.Priority)})
	}
	if len(field.Validators) > 0 {
		tail = append(tail, attr{"validate", renderValidators(field.Validators)})
	}
	if field.ReportVisible != nil {
		tail = append(tail, attr{"report", strconv.FormatBool(*field.ReportVisible)})
	}
	if field.Placeholder != "" {
		tail = append(tail, attr{"placeholder", field.Placeholder})
	}
	if field.MinLength != nil {
		tail = append(tail, attr{"minLength", strconv.Itoa(*field.MinLength)})
	}
	if field.MaxLength != nil {
		tail = append(tail, attr{"maxLength", strconv.Itoa(*field.MaxLength)})
	}
	if field.Pattern != "" {
		tail = append(tail, attr{"pattern", field.Pattern})
	}
	if field.MinItems != nil {
		tail = append(tail, attr{"minItems", strconv.Itoa(*field.MinItems)})
	}
	if field.MaxItems != nil {
		tail = append(tail, attr{"maxItems", strconv.Itoa(*field.MaxItems)})
	}
	if field.Min != nil {
		tail = append(tail, attr{"min", formatFloat(*field.Min)})
	}
	if field.Max != nil {
		tail = append(tail, attr{"max", formatFloat(*field.Max)})
	}
	if field.IntegerOnly {
		tail = append(tail, attr{"integer", "true"})
	}
	if field.Kind == form.KindCheckboxes && field.CheckboxMode != "" && field.CheckboxMode != form.CheckboxMulti {
		tail = append(tail, attr{"checkboxMode", string(field.CheckboxMode)})
	}
	sortTail(tail)
	return append(attrs, tail...)
}

// renderer accumulates the canonical form body. Documentation blocks are
// emitted together after the form description and notes together before the
// close tag, each run in parse order, so a serialize and reparse cycle
// keeps the Docs and Notes slices stable.
type renderer struct {
	f *form.ParsedForm
	b strings.Builder
}

func (r *renderer) line(s string) {
	r.b.WriteString(s)
	r.b.WriteByte('\n')
}

func (r *renderer) blank() {
	r.b.WriteByte('\n')
}

// renderForm emits the whole form directive in canonical tag style, with a
// trailing newline.
func renderForm(f *form.ParsedForm) string {
	r := &renderer{f: f}
	schema := f.Schema

	attrs := []attr{{"id", schema.ID}}
	if schema.Title != "" {
		attrs = append(attrs, attr{"title", schema.Title})
	}
	r.line(renderTag("form", attrs, false))
	if schema.Description != "" {
		r.blank()
		r.line(schema.Description)
	}
	r.renderDocBlocks()

	for _, group := range schema.Groups {
		if group.Implicit {
			for _, field := range group.Fields {
				r.blank()
				r.renderField(field)
			}
			continue
		}
		r.blank()
		r.renderGroup(group)
	}

	r.renderNotes()
	r.blank()
	r.line(closeTag("form"))
	return r.b.String()
}

func (r *renderer) renderGroup(group form.Group) {
	attrs := []attr{{"id", group.ID}}
	if group.Title != "" {
		attrs = append(attrs, attr{"title", group.Title})
	}
	if len(group.Validators) > 0 {
		attrs = append(attrs, attr{"validate", renderValidators(group.Validators)})
	}
	r.line(renderTag("group", attrs, false))
	for _, field := range group.Fields {
		r.blank()
		r.renderField(field)
	}
	r.blank()
	r.line(closeTag("group"))
}

// renderDocBlocks emits every documentation block in parse order. Ref
// checks run after the full walk, so a block may precede the construct it
// names.
func (r *renderer) renderDocBlocks() {
	for _, doc := range r.f.Docs {
		attrs := []attr{{"ref", doc.Ref}}
		if doc.ReportVisible != form.DefaultReportVisible(doc.Tag) {
			attrs = append(attrs, attr{"report", strconv.FormatBool(doc.ReportVisible)})
		}
		r.blank()
		r.line(renderTag(string(doc.Tag), attrs, false))
		if doc.Body != "" {
			r.blank()
			r.line(doc.Body)
			r.blank()
		}
		r.line(closeTag(string(doc.Tag)))
	}
}

// renderNotes emits every note directive in parse order, in one run before
// the form close, so relative note order survives re-parsing regardless of
// which constructs the notes reference.
func (r *renderer) renderNotes() {
	for _, note := range r.f.Notes {
		attrs := []attr{{"id", note.ID}, {"ref", note.Ref}}
		if note.Role != "" && note.Role != form.DefaultRole {
			attrs = append(attrs, attr{"role", note.Role})
		}
		r.blank()
		r.line(renderTag("note", attrs, false))
		if note.Body != "" {
			r.blank()
			r.line(note.Body)
			r.blank()
		}
		r.line(closeTag("note"))
	}
}

func (r *renderer) renderField(field form.Field) {
	resp := r.f.Response(field.ID)

	r.line(renderTag("field", fieldAttrs(field), false))
	if field.Label != "" {
		r.blank()
		r.line(field.Label)
	}

	switch field.Kind {
	case form.KindCheckboxes, form.KindSingleSelect, form.KindMultiSelect:
		r.blank()
		r.renderMarkers(field, resp)
		if !resp.Answered() && resp.State != form.StateUnanswered {
			r.blank()
			r.renderValueBlock(form.EncodeSentinel(resp.State, resp.Reason), false)
		}
	case form.KindTable:
		r.renderTableBody(field, resp)
	default:
		if payload, ok := scalarPayload(field.Kind, resp); ok {
			r.blank()
			r.renderValueBlock(payload, true)
		}
	}

	r.blank()
	r.line(closeTag("field"))
}

func (r *renderer) renderMarkers(field form.Field, resp form.Response) {
	selected := make(map[string]bool)
	states := map[string]form.CheckState{}
	switch v := resp.Value.(type) {
	case form.Selection:
		selected[v.OptionID] = true
	case form.MultiSelection:
		for _, id := range v.OptionIDs {
			selected[id] = true
		}
	case form.Checkmarks:
		states = v.States
	}

	for _, opt := range field.Options {
		var marker byte
		if field.Kind == form.KindCheckboxes {
			state, ok := states[opt.ID]
			if !ok {
				state = form.ZeroCheckState(field.CheckboxMode)
			}
			marker = form.MarkerForState(state)
		} else {
			marker = ' '
			if selected[opt.ID] {
				marker = 'x'
			}
		}
		r.line(fmt.Sprintf("- [%c] %s: %s", marker, opt.ID, opt.Label))
	}
}

func (r *renderer) renderValueBlock(content string, allowRaw bool) {
	fence := pickFence(content)
	info := "value"
	if allowRaw && looksLikeDirective(content) {
		info = "value raw"
	}
	r.line(fence + info)
	if content != "" {
		r.line(content)
	}
	r.line(fence)
}

// scalarPayload renders the value block content for text-entry kinds. A
// skipped or aborted state re-encodes as its sentinel, taking precedence
// over any stale value.
func scalarPayload(kind form.FieldKind, resp form.Response) (string, bool) {
	if resp.State == form.StateSkipped || resp.State == form.StateAborted {
		return form.EncodeSentinel(resp.State, resp.Reason), true
	}
	if !resp.Answered() {
		return "", false
	}
	switch v := resp.Value.(type) {
	case form.Scalar:
		return v.Text, true
	case form.Number:
		return formatFloat(v.Val), true
	case form.Year:
		return strconv.Itoa(v.Val), true
	case form.List:
		return strings.Join(v.Items, "\n"), true
	}
	return "", false
}

func (r *renderer) renderTableBody(field form.Field, resp form.Response) {
	if !field.ColumnsInferred {
		for _, col := range field.Columns {
			r.blank()
			attrs := []attr{{"id", col.ID}}
			if col.Label != "" && col.Label != col.ID {
				attrs = append(attrs, attr{"label", col.Label})
			}
			if col.Type != "" && col.Type != form.ColumnString {
				attrs = append(attrs, attr{"type", string(col.Type)})
			}
			if col.Required {
				attrs = append(attrs, attr{"required", "true"})
			}
			r.line(renderTag("column", attrs, true))
		}
	}

	if resp.State == form.StateSkipped || resp.State == form.StateAborted {
		r.blank()
		r.renderValueBlock(form.EncodeSentinel(resp.State, resp.Reason), false)
		return
	}

	rows, answered := resp.Value.(form.TableRows)
	if !answered && !field.ColumnsInferred {
		return
	}

	r.blank()
	r.line(markdownTable(field.Columns, rows.Rows))
}

// markdownTable renders a literal pipe table with columns padded to equal
// width. Tables are never fenced.
func markdownTable(columns []form.Column, rows []form.Row) string {
	header := make([]string, len(columns))
	widths := make([]int, len(columns))
	for i, col := range columns {
		header[i] = col.Label
		widths[i] = len(col.Label)
		if widths[i] < 3 {
			widths[i] = 3
		}
	}
	body := make([][]string, len(rows))
	for ri, row := range rows {
		cells := make([]string, len(columns))
		for ci, col := range columns {
			cell, ok := row[col.ID]
			if !ok {
				cell = form.Cell{State: form.CellAnswered, Text: ""}
			}
			cells[ci] = escapePipes(form.EncodeCell(cell))
			if len(cells[ci]) > widths[ci] {
				widths[ci] = len(cells[ci])
			}
		}
		body[ri] = cells
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteByte('|')
		for i, cell := range cells {
			b.WriteByte(' ')
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
	}
	writeRow(header)
	b.WriteByte('|')
	for i := range columns {
		b.WriteByte(' ')
		b.WriteString(strings.Repeat("-", widths[i]))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
	for _, cells := range body {
		writeRow(cells)
	}
	return strings.TrimRight(b.String(), "\n")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
