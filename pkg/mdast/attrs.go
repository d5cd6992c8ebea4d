package mdast

import (
	"fmt"
	"strconv"
	"strings"
)

// attrValue keeps the raw token plus whether it was quoted, so numeric and
// boolean interpretation can reject quoted text where a number is required.
type attrValue struct {
	raw    string
	quoted bool
}

// Attrs is a validated accessor over a directive's attribute bag. Lookups are
// typed: asking for an int on a non-numeric token is an error rather than a
// silent zero.
type Attrs struct {
	values map[string]attrValue
	order  []string
}

// NewAttrs builds an empty attribute bag.
func NewAttrs() Attrs {
	return Attrs{values: make(map[string]attrValue)}
}

// Len reports the number of attributes.
func (a Attrs) Len() int { return len(a.order) }

// Keys returns attribute names in declaration order.
func (a Attrs) Keys() []string { return append([]string(nil), a.order...) }

// Has reports whether the attribute is present.
func (a Attrs) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// String returns the attribute as text. Flags (bare keys) read as "true".
func (a Attrs) String(key string) (string, bool) {
	v, ok := a.values[key]
	if !ok {
		return "", false
	}
	return v.raw, true
}

// Int parses the attribute as an integer.
func (a Attrs) Int(key string) (int, bool, error) {
	v, ok := a.values[key]
	if !ok {
		return 0, false, nil
	}
	if v.quoted {
		return 0, true, fmt.Errorf("attribute %q: expected integer, got quoted string %q", key, v.raw)
	}
	n, err := strconv.Atoi(v.raw)
	if err != nil {
		return 0, true, fmt.Errorf("attribute %q: expected integer, got %q", key, v.raw)
	}
	return n, true, nil
}

// Float parses the attribute as a number.
func (a Attrs) Float(key string) (float64, bool, error) {
	v, ok := a.values[key]
	if !ok {
		return 0, false, nil
	}
	if v.quoted {
		return 0, true, fmt.Errorf("attribute %q: expected number, got quoted string %q", key, v.raw)
	}
	f, err := strconv.ParseFloat(v.raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("attribute %q: expected number, got %q", key, v.raw)
	}
	return f, true, nil
}

// Bool parses the attribute as a boolean. A bare flag is true.
func (a Attrs) Bool(key string) (bool, bool, error) {
	v, ok := a.values[key]
	if !ok {
		return false, false, nil
	}
	switch v.raw {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	}
	return false, true, fmt.Errorf("attribute %q: expected true or false, got %q", key, v.raw)
}

func (a *Attrs) set(key string, v attrValue) error {
	if a.values == nil {
		a.values = make(map[string]attrValue)
	}
	if _, dup := a.values[key]; dup {
		return fmt.Errorf("duplicate attribute %q", key)
	}
	a.values[key] = v
	a.order = append(a.order, key)
	return nil
}

// ParseAttrList parses "k=v k2=\"quoted\" flag" attribute text. Bare keys
// become boolean flags; quoted values support \" and \\ escapes.
func ParseAttrList(s string) (Attrs, error) {
	attrs := NewAttrs()
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && isKeyChar(s[i]) {
			i++
		}
		key := s[start:i]
		if key == "" {
			return Attrs{}, fmt.Errorf("malformed attribute list near %q", s[i:])
		}
		if i >= len(s) || s[i] != '=' {
			if err := attrs.set(key, attrValue{raw: "true"}); err != nil {
				return Attrs{}, err
			}
			continue
		}
		i++ // consume '='
		if i < len(s) && s[i] == '"' {
			value, next, err := readQuoted(s, i)
			if err != nil {
				return Attrs{}, fmt.Errorf("attribute %q: %w", key, err)
			}
			i = next
			if err := attrs.set(key, attrValue{raw: value, quoted: true}); err != nil {
				return Attrs{}, err
			}
			continue
		}
		vstart := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		if vstart == i {
			return Attrs{}, fmt.Errorf("attribute %q: missing value", key)
		}
		if err := attrs.set(key, attrValue{raw: s[vstart:i]}); err != nil {
			return Attrs{}, err
		}
	}
	return attrs, nil
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func readQuoted(s string, start int) (string, int, error) {
	var b strings.Builder
	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", i, fmt.Errorf("unterminated quoted value")
}

// QuoteAttr renders a value in attribute syntax, quoting when it contains
// whitespace or quote characters.
func QuoteAttr(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\"\\") {
		escaped := strings.ReplaceAll(value, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	}
	return value
}
