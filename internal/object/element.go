package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is the basic scalar value: a string that may be coerced to a
// boolean, integer, float or duration on demand.
type Element struct {
	prefixed
	value string

	// IsRaw marks an element constructed from raw input text that contained
	// no template syntax, enabling raw-value fast paths.
	IsRaw bool
}

func NewElement(value string) *Element {
	return &Element{value: value}
}

func RawElement(value string) *Element {
	return &Element{value: value, IsRaw: true}
}

func ElementFromBool(b bool) *Element {
	return &Element{value: strconv.FormatBool(b)}
}

func ElementFromInt(i int64) *Element {
	return &Element{value: strconv.FormatInt(i, 10)}
}

func ElementFromFloat(f float64) *Element {
	return &Element{value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func (e *Element) Type() ObjectType { return ELEMENT_OBJ }

func (e *Element) Identify() string { return e.value }

func (e *Element) String() string { return e.value }

func (e *Element) AsLower() string { return strings.ToLower(e.value) }

// AsBoolean is strict: only the literal string "true" counts as true.
func (e *Element) AsBoolean() bool {
	return strings.EqualFold(e.value, "true")
}

func (e *Element) AsInt() (int64, error) {
	f, err := strconv.ParseFloat(e.value, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number", e.value)
	}
	return int64(f), nil
}

func (e *Element) AsFloat() (float64, error) {
	f, err := strconv.ParseFloat(e.value, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number", e.value)
	}
	return f, nil
}

func (e *Element) AsDuration() (*Duration, error) {
	return ParseDuration(e.value)
}

func (e *Element) IsBoolean() bool {
	lower := e.AsLower()
	return lower == "true" || lower == "false"
}

func (e *Element) IsInt() bool {
	_, err := strconv.ParseInt(e.value, 10, 64)
	return err == nil
}

func (e *Element) IsFloat() bool {
	_, err := strconv.ParseFloat(e.value, 64)
	return err == nil
}

func (e *Element) Attribute(name string) (Value, bool) {
	switch name {
	case "to_boolean":
		return ElementFromBool(e.AsBoolean()), true
	case "to_number":
		f, err := e.AsFloat()
		if err != nil {
			return nil, false
		}
		return ElementFromFloat(f), true
	case "to_lowercase":
		return NewElement(strings.ToLower(e.value)), true
	case "to_uppercase":
		return NewElement(strings.ToUpper(e.value)), true
	case "length":
		return ElementFromInt(int64(len(e.value))), true
	case "is_boolean":
		return ElementFromBool(e.IsBoolean()), true
	case "is_number":
		return ElementFromBool(e.IsFloat()), true
	}
	return nil, false
}
