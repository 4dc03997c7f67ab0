package object

import (
	"strconv"
	"strings"
)

// List is an ordered collection of values, rendered pipe-separated.
type List struct {
	prefixed
	Items []Value
}

func NewList(items ...Value) *List {
	return &List{Items: items}
}

func ListFromStrings(items []string) *List {
	l := &List{Items: make([]Value, 0, len(items))}
	for _, s := range items {
		l.Items = append(l.Items, NewElement(s))
	}
	return l
}

// ParseList splits pipe-separated text into a list of elements.
func ParseList(text string) *List {
	if text == "" {
		return &List{}
	}
	return ListFromStrings(strings.Split(text, "|"))
}

func (l *List) Type() ObjectType { return LIST_OBJ }

func (l *List) Identify() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.Identify()
	}
	return strings.Join(parts, "|")
}

func (l *List) Add(v Value) {
	l.Items = append(l.Items, v)
}

func (l *List) Attribute(name string) (Value, bool) {
	switch {
	case name == "size":
		return ElementFromInt(int64(len(l.Items))), true
	case name == "is_empty":
		return ElementFromBool(len(l.Items) == 0), true
	case name == "first":
		if len(l.Items) == 0 {
			return nil, false
		}
		return l.Items[0], true
	case name == "last":
		if len(l.Items) == 0 {
			return nil, false
		}
		return l.Items[len(l.Items)-1], true
	case strings.HasPrefix(name, "get[") && strings.HasSuffix(name, "]"):
		idx, err := strconv.Atoi(name[4 : len(name)-1])
		if err != nil || idx < 1 || idx > len(l.Items) {
			return nil, false
		}
		return l.Items[idx-1], true
	}
	return nil, false
}
