package form

// ValueKind discriminates the members of the Value union. Kinds correspond to
// value families rather than field kinds: string, url and date fields all
// carry scalar text values.
type ValueKind string

const (
	ValueScalar     ValueKind = "scalar"
	ValueNumber     ValueKind = "number"
	ValueYear       ValueKind = "year"
	ValueList       ValueKind = "list"
	ValueSelection  ValueKind = "selection"
	ValueMulti      ValueKind = "multi_selection"
	ValueCheckmarks ValueKind = "checkmarks"
	ValueTable      ValueKind = "table"
)

// Value is the tagged union of answer payloads. A Value is present on a
// Response only when the response state is StateAnswered.
type Value interface {
	ValueKind() ValueKind
}

// Scalar holds the text payload of string, url and date fields.
type Scalar struct {
	Text string
}

func (Scalar) ValueKind() ValueKind { return ValueScalar }

// Number holds the numeric payload of number fields.
type Number struct {
	Val float64
}

func (Number) ValueKind() ValueKind { return ValueNumber }

// Year holds the payload of year fields.
type Year struct {
	Val int
}

func (Year) ValueKind() ValueKind { return ValueYear }

// List holds the items of string_list and url_list fields, one per line in
// the serialized form.
type List struct {
	Items []string
}

func (List) ValueKind() ValueKind { return ValueList }

// Selection holds the chosen option of a single_select field.
type Selection struct {
	OptionID string
}

func (Selection) ValueKind() ValueKind { return ValueSelection }

// MultiSelection holds the chosen options of a multi_select field in
// declaration order.
type MultiSelection struct {
	OptionIDs []string
}

func (MultiSelection) ValueKind() ValueKind { return ValueMulti }

// CheckState is one checkbox option's state. The legal subset depends on the
// field's CheckboxMode.
type CheckState string

const (
	CheckTodo       CheckState = "todo"
	CheckDone       CheckState = "done"
	CheckIncomplete CheckState = "incomplete"
	CheckActive     CheckState = "active"
	CheckNA         CheckState = "na"
	CheckUnfilled   CheckState = "unfilled"
	CheckYes        CheckState = "yes"
	CheckNo         CheckState = "no"
)

// LegalCheckStates returns the state alphabet for a checkbox mode.
func LegalCheckStates(mode CheckboxMode) []CheckState {
	switch mode {
	case CheckboxSimple:
		return []CheckState{CheckTodo, CheckDone}
	case CheckboxExplicit:
		return []CheckState{CheckUnfilled, CheckYes, CheckNo}
	default:
		return []CheckState{CheckTodo, CheckDone, CheckIncomplete, CheckActive, CheckNA}
	}
}

// IsLegalCheckState reports whether s belongs to the mode's alphabet.
func IsLegalCheckState(mode CheckboxMode, s CheckState) bool {
	for _, legal := range LegalCheckStates(mode) {
		if s == legal {
			return true
		}
	}
	return false
}

// Checkmarks maps option id to checkbox state for checkboxes fields.
type Checkmarks struct {
	States map[string]CheckState
}

func (Checkmarks) ValueKind() ValueKind { return ValueCheckmarks }

// Clone returns a deep copy so patch transactions never alias the committed
// map.
func (c Checkmarks) Clone() Checkmarks {
	if c.States == nil {
		return Checkmarks{}
	}
	out := make(map[string]CheckState, len(c.States))
	for id, state := range c.States {
		out[id] = state
	}
	return Checkmarks{States: out}
}

// CellState is a table cell's answer state. Cells are never "unanswered": a
// blank cell without a sentinel is a parse error, not an empty answer.
type CellState string

const (
	CellAnswered CellState = "answered"
	CellSkipped  CellState = "skipped"
	CellAborted  CellState = "aborted"
)

// Cell is one table cell's response: a scalar value when answered, or a
// sentinel state with an optional reason.
type Cell struct {
	State  CellState
	Text   string
	Reason string
}

// Row maps column id to cell response for one table row.
type Row map[string]Cell

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for col, cell := range r {
		out[col] = cell
	}
	return out
}

// TableRows holds the ordered rows of a table field.
type TableRows struct {
	Rows []Row
}

func (TableRows) ValueKind() ValueKind { return ValueTable }

// Clone returns a deep copy of the rows.
func (t TableRows) Clone() TableRows {
	if t.Rows == nil {
		return TableRows{}
	}
	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = row.Clone()
	}
	return TableRows{Rows: rows}
}

// CloneValue deep-copies a value so transactional apply never shares mutable
// state with the committed model. Immutable members are returned as-is.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case nil:
		return nil
	case Checkmarks:
		return val.Clone()
	case TableRows:
		return val.Clone()
	case List:
		return List{Items: append([]string(nil), val.Items...)}
	case MultiSelection:
		return MultiSelection{OptionIDs: append([]string(nil), val.OptionIDs...)}
	default:
		return v
	}
}

// ExpectedValueKind maps a field kind to the value family it stores.
func ExpectedValueKind(k FieldKind) ValueKind {
	switch k {
	case KindNumber:
		return ValueNumber
	case KindYear:
		return ValueYear
	case KindStringList, KindURLList:
		return ValueList
	case KindSingleSelect:
		return ValueSelection
	case KindMultiSelect:
		return ValueMulti
	case KindCheckboxes:
		return ValueCheckmarks
	case KindTable:
		return ValueTable
	default:
		return ValueScalar
	}
}
