package parser

import (
	"strings"

	"github.com/jlevy/markform-sub006/pkg/form"
	"github.com/jlevy/markform-sub006/pkg/mdast"
)

// Attribute allowlists per field kind, on top of the shared base set.
var baseFieldAttrs = []string{"kind", "id", "required", "priority", "role", "validate", "report"}

var kindAttrs = map[form.FieldKind][]string{
	form.KindString:       {"minLength", "maxLength", "pattern", "placeholder"},
	form.KindNumber:       {"min", "max", "integer", "placeholder"},
	form.KindStringList:   {"minItems", "maxItems", "placeholder"},
	form.KindURL:          {"placeholder"},
	form.KindURLList:      {"minItems", "maxItems", "placeholder"},
	form.KindDate:         {"placeholder"},
	form.KindYear:         {"min", "max", "placeholder"},
	form.KindSingleSelect: {},
	form.KindMultiSelect:  {"minItems", "maxItems"},
	form.KindCheckboxes:   {"checkboxMode"},
	form.KindTable:        {"minItems", "maxItems"},
}

func (w *walker) extractField(node *mdast.Node, parent string) (form.Field, error) {
	kindStr, ok := node.Attrs.String("kind")
	if !ok {
		return form.Field{}, w.fail(node.StartLine, "field: missing required attribute \"kind\"")
	}
	kind := form.FieldKind(kindStr)
	if !form.IsValidKind(kind) {
		return form.Field{}, w.fail(node.StartLine, "field: unknown kind %q", kindStr)
	}
	id, err := w.requireID(node, "field")
	if err != nil {
		return form.Field{}, err
	}
	if err := w.checkAttrs(node, "field "+id, append(append([]string(nil), baseFieldAttrs...), kindAttrs[kind]...)); err != nil {
		return form.Field{}, err
	}

	field := form.Field{Kind: kind, ID: id, Priority: form.PriorityMedium, Role: form.DefaultRole}
	if err := w.baseAttrs(node, &field); err != nil {
		return form.Field{}, err
	}
	if err := w.kindAttrs(node, &field); err != nil {
		return form.Field{}, err
	}
	if err := w.index.Add(id, form.IndexEntry{Type: form.NodeField, Parent: parent}); err != nil {
		return form.Field{}, w.fail(node.StartLine, "%v", err)
	}

	resp, hasValue, err := w.fieldBody(node, &field)
	if err != nil {
		return form.Field{}, err
	}
	w.responses[id] = resp
	if err := w.indexMembers(node, field, resp); err != nil {
		return form.Field{}, err
	}
	w.addRegion(form.RegionField, id, node, hasValue)
	return field, nil
}

func (w *walker) baseAttrs(node *mdast.Node, field *form.Field) error {
	line := node.StartLine
	if req, present, err := node.Attrs.Bool("required"); err != nil {
		return w.fail(line, "field %s: %v", field.ID, err)
	} else if present {
		field.Required = req
	}
	if prio, ok := node.Attrs.String("priority"); ok {
		switch form.Priority(prio) {
		case form.PriorityHigh, form.PriorityMedium, form.PriorityLow:
			field.Priority = form.Priority(prio)
		default:
			return w.fail(line, "field %s: invalid priority %q", field.ID, prio)
		}
	}
	if role, ok := node.Attrs.String("role"); ok && role != "" {
		field.Role = role
	}
	if refs, ok := node.Attrs.String("validate"); ok {
		parsed, err := parseValidatorRefs(refs)
		if err != nil {
			return w.fail(line, "field %s: %v", field.ID, err)
		}
		field.Validators = parsed
	}
	if visible, present, err := node.Attrs.Bool("report"); err != nil {
		return w.fail(line, "field %s: %v", field.ID, err)
	} else if present {
		field.ReportVisible = &visible
	}
	field.Placeholder, _ = node.Attrs.String("placeholder")
	return nil
}

func (w *walker) kindAttrs(node *mdast.Node, field *form.Field) error {
	line := node.StartLine
	intAttr := func(key string, dst **int) error {
		val, present, err := node.Attrs.Int(key)
		if err != nil {
			return w.fail(line, "field %s: %v", field.ID, err)
		}
		if present {
			*dst = &val
		}
		return nil
	}
	floatAttr := func(key string, dst **float64) error {
		val, present, err := node.Attrs.Float(key)
		if err != nil {
			return w.fail(line, "field %s: %v", field.ID, err)
		}
		if present {
			*dst = &val
		}
		return nil
	}

	switch field.Kind {
	case form.KindString:
		if err := intAttr("minLength", &field.MinLength); err != nil {
			return err
		}
		if err := intAttr("maxLength", &field.MaxLength); err != nil {
			return err
		}
		field.Pattern, _ = node.Attrs.String("pattern")
	case form.KindNumber:
		if err := floatAttr("min", &field.Min); err != nil {
			return err
		}
		if err := floatAttr("max", &field.Max); err != nil {
			return err
		}
		if integer, present, err := node.Attrs.Bool("integer"); err != nil {
			return w.fail(line, "field %s: %v", field.ID, err)
		} else if present {
			field.IntegerOnly = integer
		}
	case form.KindYear:
		if err := floatAttr("min", &field.Min); err != nil {
			return err
		}
		if err := floatAttr("max", &field.Max); err != nil {
			return err
		}
	case form.KindStringList, form.KindURLList, form.KindMultiSelect, form.KindTable:
		if err := intAttr("minItems", &field.MinItems); err != nil {
			return err
		}
		if err := intAttr("maxItems", &field.MaxItems); err != nil {
			return err
		}
	case form.KindCheckboxes:
		field.CheckboxMode = form.CheckboxMulti
		if mode, ok := node.Attrs.String("checkboxMode"); ok {
			switch form.CheckboxMode(mode) {
			case form.CheckboxMulti, form.CheckboxSimple, form.CheckboxExplicit:
				field.CheckboxMode = form.CheckboxMode(mode)
			default:
				return w.fail(line, "field %s: invalid checkboxMode %q", field.ID, mode)
			}
		}
		if field.CheckboxMode == form.CheckboxExplicit {
			if req, present, _ := node.Attrs.Bool("required"); present && !req {
				return w.fail(line, "field %s: explicit checkboxes are inherently required", field.ID)
			}
			field.Required = true
		}
	}
	return nil
}

// fieldBody reads label prose, option marker lists, value payloads and table
// content out of a field directive's children, returning the initial
// response.
func (w *walker) fieldBody(node *mdast.Node, field *form.Field) (form.Response, bool, error) {
	var labelParts []string
	var markers []markerLine
	var valueNode *mdast.Node
	var tableNode *mdast.Node

	markerKind := field.Kind == form.KindCheckboxes ||
		field.Kind == form.KindSingleSelect || field.Kind == form.KindMultiSelect

	for _, child := range node.Children {
		switch child.Type {
		case mdast.NodeText:
			if markerKind {
				if lines, ok := parseMarkerBlock(child.Raw, child.StartLine); ok {
					markers = append(markers, lines...)
					continue
				}
			}
			if trimmed := strings.TrimSpace(child.Raw); trimmed != "" {
				labelParts = append(labelParts, trimmed)
			}
		case mdast.NodeCode:
			if words := strings.Fields(child.Info); valueNode == nil && len(words) > 0 && words[0] == "value" {
				valueNode = child
			}
		case mdast.NodeTable:
			if tableNode == nil {
				tableNode = child
			}
		case mdast.NodeDirective:
			if child.Tag == "column" {
				col, err := w.extractColumn(child, field)
				if err != nil {
					return form.Response{}, false, err
				}
				field.Columns = append(field.Columns, col)
				continue
			}
			return form.Response{}, false, w.fail(child.StartLine, "unrecognized tag %q inside field %q", child.Tag, field.ID)
		}
	}
	field.Label = strings.Join(labelParts, "\n\n")

	// A sentinel inside a value block wins for every kind.
	if valueNode != nil {
		if state, reason, ok := parseSentinel(valueNode.Raw); ok {
			if markerKind {
				if err := w.fillOptions(field, markers); err != nil {
					return form.Response{}, false, err
				}
			}
			return form.Response{State: state, Reason: reason}, true, nil
		}
	}

	switch {
	case markerKind:
		resp, err := w.markerResponse(node, field, markers)
		return resp, valueNode != nil, err
	case field.Kind == form.KindTable:
		resp, err := w.tableResponse(node, field, tableNode)
		return resp, tableNode != nil, err
	default:
		if tableNode != nil {
			return form.Response{}, false, w.fail(tableNode.StartLine, "field %s: unexpected table content", field.ID)
		}
		if valueNode == nil {
			return form.NewResponse(), false, nil
		}
		value, err := parseScalarPayload(field.Kind, valueNode.Raw, valueNode.StartLine+w.lineOffset)
		if err != nil {
			return form.Response{}, false, err
		}
		if value == nil {
			return form.NewResponse(), true, nil
		}
		return form.Answer(value), true, nil
	}
}

func (w *walker) fillOptions(field *form.Field, markers []markerLine) error {
	seen := make(map[string]bool)
	for _, m := range markers {
		if seen[m.id] {
			return w.fail(m.lineNo, "field %s: duplicate option %q", field.ID, m.id)
		}
		seen[m.id] = true
		field.Options = append(field.Options, form.Option{ID: m.id, Label: m.label})
	}
	return nil
}

func (w *walker) markerResponse(node *mdast.Node, field *form.Field, markers []markerLine) (form.Response, error) {
	if len(markers) == 0 {
		return form.Response{}, w.fail(node.StartLine, "field %s: no options declared", field.ID)
	}
	if err := w.fillOptions(field, markers); err != nil {
		return form.Response{}, err
	}

	switch field.Kind {
	case form.KindSingleSelect, form.KindMultiSelect:
		var selected []string
		for _, m := range markers {
			switch m.marker {
			case ' ':
			case 'x', 'X':
				selected = append(selected, m.id)
			default:
				return form.Response{}, w.fail(m.lineNo, "field %s: invalid marker %q for select option", field.ID, string(m.marker))
			}
		}
		if field.Kind == form.KindSingleSelect {
			if len(selected) > 1 {
				return form.Response{}, w.fail(node.StartLine, "field %s: multiple options selected", field.ID)
			}
			if len(selected) == 1 {
				return form.Answer(form.Selection{OptionID: selected[0]}), nil
			}
			return form.NewResponse(), nil
		}
		if len(selected) > 0 {
			return form.Answer(form.MultiSelection{OptionIDs: selected}), nil
		}
		return form.NewResponse(), nil
	default: // checkboxes
		states := make(map[string]form.CheckState, len(markers))
		touched := false
		zero := form.ZeroCheckState(field.CheckboxMode)
		for _, m := range markers {
			state, ok := form.StateForMarker(field.CheckboxMode, m.marker)
			if !ok {
				return form.Response{}, w.fail(m.lineNo, "field %s: marker %q is not legal in %s mode",
					field.ID, string(m.marker), field.CheckboxMode)
			}
			states[m.id] = state
			if state != zero {
				touched = true
			}
		}
		if !touched {
			return form.NewResponse(), nil
		}
		return form.Answer(form.Checkmarks{States: states}), nil
	}
}

func (w *walker) extractColumn(node *mdast.Node, field *form.Field) (form.Column, error) {
	if field.Kind != form.KindTable {
		return form.Column{}, w.fail(node.StartLine, "field %s: column declarations require kind=table", field.ID)
	}
	id, err := w.requireID(node, "column")
	if err != nil {
		return form.Column{}, err
	}
	if err := w.checkAttrs(node, "column "+id, []string{"id", "label", "type", "required"}); err != nil {
		return form.Column{}, err
	}
	col := form.Column{ID: id, Type: form.ColumnString}
	col.Label, _ = node.Attrs.String("label")
	if col.Label == "" {
		col.Label = id
	}
	if typ, ok := node.Attrs.String("type"); ok {
		if !form.IsValidColumnType(form.ColumnType(typ)) {
			return form.Column{}, w.fail(node.StartLine, "column %s: unknown type %q", id, typ)
		}
		col.Type = form.ColumnType(typ)
	}
	if req, present, err := node.Attrs.Bool("required"); err != nil {
		return form.Column{}, w.fail(node.StartLine, "column %s: %v", id, err)
	} else if present {
		col.Required = req
	}
	for _, existing := range field.Columns {
		if existing.ID == id {
			return form.Column{}, w.fail(node.StartLine, "field %s: duplicate column %q", field.ID, id)
		}
	}
	return col, nil
}

func (w *walker) tableResponse(node *mdast.Node, field *form.Field, table *mdast.Node) (form.Response, error) {
	if table == nil {
		if len(field.Columns) == 0 {
			return form.Response{}, w.fail(node.StartLine, "field %s: table fields need column declarations or a literal table", field.ID)
		}
		return form.NewResponse(), nil
	}

	if len(field.Columns) == 0 {
		// Infer columns from the header row: slugged ids, string type,
		// optional.
		seen := make(map[string]bool)
		for _, label := range table.Header {
			id := slugify(label)
			if id == "" || seen[id] {
				return form.Response{}, w.fail(table.StartLine, "field %s: cannot derive unique column id from header %q", field.ID, label)
			}
			seen[id] = true
			field.Columns = append(field.Columns, form.Column{ID: id, Label: label, Type: form.ColumnString})
		}
		field.ColumnsInferred = true
	} else if len(table.Header) != len(field.Columns) {
		return form.Response{}, w.fail(table.StartLine, "field %s: table has %d columns, %d declared",
			field.ID, len(table.Header), len(field.Columns))
	}

	var rows []form.Row
	for rowIdx, cells := range table.Rows {
		if len(cells) != len(field.Columns) {
			return form.Response{}, w.fail(table.StartLine, "field %s: row %d has %d cells, expected %d",
				field.ID, rowIdx+1, len(cells), len(field.Columns))
		}
		row := make(form.Row, len(cells))
		for i, cellText := range cells {
			col := field.Columns[i]
			if strings.TrimSpace(cellText) == "" {
				return form.Response{}, w.fail(table.StartLine, "field %s: row %d: blank cell in column %q (use a skip or abort sentinel)",
					field.ID, rowIdx+1, col.ID)
			}
			row[col.ID] = parseCellText(cellText)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return form.NewResponse(), nil
	}
	return form.Answer(form.TableRows{Rows: rows}), nil
}

// indexMembers registers qualified option/column/row references.
func (w *walker) indexMembers(node *mdast.Node, field form.Field, resp form.Response) error {
	for _, opt := range field.Options {
		if err := w.index.Add(form.QualifiedRef(field.ID, opt.ID), form.IndexEntry{Type: form.NodeOption, Parent: field.ID}); err != nil {
			return w.fail(node.StartLine, "field %s: %v", field.ID, err)
		}
	}
	for _, col := range field.Columns {
		if err := w.index.Add(form.QualifiedRef(field.ID, col.ID), form.IndexEntry{Type: form.NodeColumn, Parent: field.ID}); err != nil {
			return w.fail(node.StartLine, "field %s: %v", field.ID, err)
		}
	}
	if rows, ok := resp.Value.(form.TableRows); ok {
		for i := range rows.Rows {
			for _, col := range field.Columns {
				if err := w.index.Add(form.RowRef(field.ID, col.ID, i), form.IndexEntry{Type: form.NodeRow, Parent: form.QualifiedRef(field.ID, col.ID)}); err != nil {
					return w.fail(node.StartLine, "field %s: %v", field.ID, err)
				}
			}
		}
	}
	return nil
}

func slugify(label string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// parseValidatorRefs reads "ref other(k=v,k2=v2)" reference lists.
func parseValidatorRefs(s string) ([]form.ValidatorRef, error) {
	var refs []form.ValidatorRef
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '(' {
			i++
		}
		ref := form.ValidatorRef{ID: s[start:i]}
		if ref.ID == "" {
			return nil, &ParseError{Msg: "validate: malformed reference list"}
		}
		if i < len(s) && s[i] == '(' {
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return nil, &ParseError{Msg: "validate: unterminated parameter list"}
			}
			params := make(map[string]string)
			for _, pair := range strings.Split(s[i+1:i+end], ",") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				key, value, found := strings.Cut(pair, "=")
				if !found || strings.TrimSpace(key) == "" {
					return nil, &ParseError{Msg: "validate: malformed parameter " + pair}
				}
				params[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
			if len(params) > 0 {
				ref.Params = params
			}
			i += end + 1
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
