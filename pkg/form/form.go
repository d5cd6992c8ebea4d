package form

// FieldKind enumerates the supported field kinds.
type FieldKind string

const (
	KindString       FieldKind = "string"
	KindNumber       FieldKind = "number"
	KindStringList   FieldKind = "string_list"
	KindCheckboxes   FieldKind = "checkboxes"
	KindSingleSelect FieldKind = "single_select"
	KindMultiSelect  FieldKind = "multi_select"
	KindURL          FieldKind = "url"
	KindURLList      FieldKind = "url_list"
	KindDate         FieldKind = "date"
	KindYear         FieldKind = "year"
	KindTable        FieldKind = "table"
)

// FieldKinds lists every kind in canonical declaration order.
var FieldKinds = []FieldKind{
	KindString, KindNumber, KindStringList, KindCheckboxes,
	KindSingleSelect, KindMultiSelect, KindURL, KindURLList,
	KindDate, KindYear, KindTable,
}

// IsValidKind reports whether k names a supported field kind.
func IsValidKind(k FieldKind) bool {
	for _, known := range FieldKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Priority orders fields for issue ranking. The default is PriorityMedium.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the numeric weight used by issue prioritization.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// CheckboxMode selects the legal state alphabet for a checkboxes field.
type CheckboxMode string

const (
	CheckboxMulti    CheckboxMode = "multi"
	CheckboxSimple   CheckboxMode = "simple"
	CheckboxExplicit CheckboxMode = "explicit"
)

// DefaultRole is the owning role assigned when a field declares none.
const DefaultRole = "agent"

// Option is one selectable entry of a select or checkboxes field.
type Option struct {
	ID    string
	Label string
}

// ColumnType constrains the scalar type of a table column.
type ColumnType string

const (
	ColumnString ColumnType = "string"
	ColumnNumber ColumnType = "number"
	ColumnURL    ColumnType = "url"
	ColumnDate   ColumnType = "date"
	ColumnYear   ColumnType = "year"
)

// IsValidColumnType reports whether t names a supported column type.
func IsValidColumnType(t ColumnType) bool {
	switch t {
	case ColumnString, ColumnNumber, ColumnURL, ColumnDate, ColumnYear:
		return true
	}
	return false
}

// Column describes one column of a table field.
type Column struct {
	ID       string
	Label    string
	Type     ColumnType
	Required bool
}

// ValidatorRef names an externally registered validator plus any parameters
// parsed out of the reference ("budget(max=10)" yields ID "budget" and
// Params {"max": "10"}).
type ValidatorRef struct {
	ID     string
	Params map[string]string
}

// Field models a single typed slot in a form. One struct covers every kind;
// kind-specific constraints are pointers so that "absent" is distinguishable
// from a zero bound.
type Field struct {
	Kind     FieldKind
	ID       string
	Label    string
	Required bool
	Priority Priority
	Role     string

	Validators    []ValidatorRef
	ReportVisible *bool // nil means visible
	Placeholder   string

	// Text and list constraints.
	MinLength *int
	MaxLength *int
	Pattern   string
	MinItems  *int
	MaxItems  *int

	// Numeric constraints (number and year kinds).
	Min         *float64
	Max         *float64
	IntegerOnly bool

	// Select and checkboxes kinds.
	CheckboxMode CheckboxMode
	Options      []Option

	// Table kind. ColumnsInferred marks columns derived from a literal
	// table's header row instead of explicit column declarations.
	Columns         []Column
	ColumnsInferred bool
}

// Option returns the option with the given id, if declared.
func (f Field) Option(id string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Column returns the column with the given id, if declared.
func (f Field) Column(id string) (Column, bool) {
	for _, col := range f.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnIDs returns the declared column ids in order.
func (f Field) ColumnIDs() []string {
	if len(f.Columns) == 0 {
		return nil
	}
	ids := make([]string, 0, len(f.Columns))
	for _, col := range f.Columns {
		ids = append(ids, col.ID)
	}
	return ids
}

// OptionIDs returns the declared option ids in order.
func (f Field) OptionIDs() []string {
	if len(f.Options) == 0 {
		return nil
	}
	ids := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		ids = append(ids, opt.ID)
	}
	return ids
}

// ReportVisibleOrDefault resolves the report flag, defaulting to visible.
func (f Field) ReportVisibleOrDefault() bool {
	if f.ReportVisible == nil {
		return true
	}
	return *f.ReportVisible
}

// Group is an ordered run of fields. Implicit groups hold fields declared
// directly under the form and never emit wrapper syntax on serialization.
type Group struct {
	ID         string
	Title      string
	Implicit   bool
	Validators []ValidatorRef
	Fields     []Field
}

// Form is the immutable schema half of a parsed document.
type Form struct {
	ID          string
	Title       string
	Description string
	Groups      []Group
}

// Fields returns every field across all groups in document order.
func (f Form) Fields() []Field {
	var out []Field
	for _, g := range f.Groups {
		out = append(out, g.Fields...)
	}
	return out
}

// Field returns the field with the given id, if present.
func (f Form) Field(id string) (Field, bool) {
	for _, g := range f.Groups {
		for _, fld := range g.Fields {
			if fld.ID == id {
				return fld, true
			}
		}
	}
	return Field{}, false
}

// Group returns the explicit or implicit group with the given id.
func (f Form) Group(id string) (Group, bool) {
	for _, g := range f.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// FieldCount reports the total number of fields in the form.
func (f Form) FieldCount() int {
	n := 0
	for _, g := range f.Groups {
		n += len(g.Fields)
	}
	return n
}
