// Package patch validates and applies batches of edits against a parsed
// form. A batch is transactional: every patch is validated against the
// pre-batch state, and either all of them apply or none do.
package patch

import (
	"encoding/json"
	"fmt"
)

// Patch is one requested edit. Concrete types cover every operation; Op
// returns the wire-level discriminator.
type Patch interface {
	Op() string
}

// Field-setting operations, one per field kind.

type SetString struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (SetString) Op() string { return "set_string" }

type SetNumber struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

func (SetNumber) Op() string { return "set_number" }

type SetStringList struct {
	Field string   `json:"field"`
	Items []string `json:"items"`

	// coercedScalar marks a wire payload that supplied a single scalar
	// where a list was expected; recorded as a warning on apply.
	coercedScalar bool
}

func (SetStringList) Op() string { return "set_string_list" }

type SetURL struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (SetURL) Op() string { return "set_url" }

type SetURLList struct {
	Field string   `json:"field"`
	Items []string `json:"items"`

	coercedScalar bool
}

func (SetURLList) Op() string { return "set_url_list" }

type SetDate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (SetDate) Op() string { return "set_date" }

type SetYear struct {
	Field string `json:"field"`
	Value int    `json:"value"`
}

func (SetYear) Op() string { return "set_year" }

type SetSingleSelect struct {
	Field  string `json:"field"`
	Option string `json:"option"`
}

func (SetSingleSelect) Op() string { return "set_single_select" }

type SetMultiSelect struct {
	Field   string   `json:"field"`
	Options []string `json:"options"`
}

func (SetMultiSelect) Op() string { return "set_multi_select" }

// SetCheckboxes merges the given option states over the field's current
// value; untouched options keep their state. Values may be mode-appropriate
// state strings or booleans, which are coerced (with a warning) to the
// mode's done/yes and todo/no states.
type SetCheckboxes struct {
	Field  string         `json:"field"`
	States map[string]any `json:"states"`
}

func (SetCheckboxes) Op() string { return "set_checkboxes" }

// SetTable replaces a table field's rows. Cell text may carry the same
// skip/abort sentinels the document syntax uses.
type SetTable struct {
	Field string              `json:"field"`
	Rows  []map[string]string `json:"rows"`
}

func (SetTable) Op() string { return "set_table" }

// Lifecycle operations.

type ClearField struct {
	Field string `json:"field"`
}

func (ClearField) Op() string { return "clear_field" }

type SkipField struct {
	Field  string `json:"field"`
	Reason string `json:"reason,omitempty"`
}

func (SkipField) Op() string { return "skip_field" }

type AbortField struct {
	Field  string `json:"field"`
	Reason string `json:"reason,omitempty"`
}

func (AbortField) Op() string { return "abort_field" }

// Note operations.

type AddNote struct {
	ID   string `json:"id,omitempty"`
	Ref  string `json:"ref"`
	Role string `json:"role,omitempty"`
	Body string `json:"body"`
}

func (AddNote) Op() string { return "add_note" }

type RemoveNote struct {
	ID string `json:"id"`
}

func (RemoveNote) Op() string { return "remove_note" }

// DecodeBatch reads a JSON array of tagged patch records, each an object
// with an "op" discriminator.
func DecodeBatch(data []byte) ([]Patch, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("patch: decode batch: %w", err)
	}
	patches := make([]Patch, 0, len(raw))
	for i, msg := range raw {
		p, err := decodeOne(msg)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		patches = append(patches, p)
	}
	return patches, nil
}

func decodeOne(msg json.RawMessage) (Patch, error) {
	var envelope struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return nil, err
	}

	unmarshal := func(dst Patch) (Patch, error) {
		if err := json.Unmarshal(msg, dst); err != nil {
			return nil, err
		}
		return dst, nil
	}

	switch envelope.Op {
	case "set_string":
		p := &SetString{}
		return unmarshal(p)
	case "set_number":
		p := &SetNumber{}
		return unmarshal(p)
	case "set_string_list":
		return decodeList(msg, false)
	case "set_url":
		p := &SetURL{}
		return unmarshal(p)
	case "set_url_list":
		return decodeList(msg, true)
	case "set_date":
		p := &SetDate{}
		return unmarshal(p)
	case "set_year":
		p := &SetYear{}
		return unmarshal(p)
	case "set_single_select":
		p := &SetSingleSelect{}
		return unmarshal(p)
	case "set_multi_select":
		p := &SetMultiSelect{}
		return unmarshal(p)
	case "set_checkboxes":
		p := &SetCheckboxes{}
		return unmarshal(p)
	case "set_table":
		p := &SetTable{}
		return unmarshal(p)
	case "clear_field":
		p := &ClearField{}
		return unmarshal(p)
	case "skip_field":
		p := &SkipField{}
		return unmarshal(p)
	case "abort_field":
		p := &AbortField{}
		return unmarshal(p)
	case "add_note":
		p := &AddNote{}
		return unmarshal(p)
	case "remove_note":
		p := &RemoveNote{}
		return unmarshal(p)
	case "":
		return nil, fmt.Errorf("missing op")
	default:
		return nil, fmt.Errorf("unknown op %q", envelope.Op)
	}
}

// decodeList reads list-setting patches, coercing a scalar "items" payload
// into a single-element list.
func decodeList(msg json.RawMessage, isURL bool) (Patch, error) {
	var record struct {
		Field string          `json:"field"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(msg, &record); err != nil {
		return nil, err
	}
	var items []string
	coerced := false
	if len(record.Items) > 0 {
		if err := json.Unmarshal(record.Items, &items); err != nil {
			var scalar string
			if err2 := json.Unmarshal(record.Items, &scalar); err2 != nil {
				return nil, fmt.Errorf("items: expected array of strings or string")
			}
			items = []string{scalar}
			coerced = true
		}
	}
	if isURL {
		return &SetURLList{Field: record.Field, Items: items, coercedScalar: coerced}, nil
	}
	return &SetStringList{Field: record.Field, Items: items, coercedScalar: coerced}, nil
}
