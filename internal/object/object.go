package object

const (
	ELEMENT_OBJ  = "ELEMENT"
	LIST_OBJ     = "LIST"
	BINARY_OBJ   = "BINARY"
	DURATION_OBJ = "DURATION"
)

type ObjectType string

// Value is the contract every script-visible value satisfies. Identify renders
// the value in re-parseable form, Attribute resolves one step of a dotted
// attribute path ("entry[name].field" style lookups walk this).
type Value interface {
	Type() ObjectType
	Identify() string
	Prefix() string
	SetPrefix(prefix string)
	Attribute(name string) (Value, bool)
}

// prefixed carries the optional display prefix shared by all value types.
type prefixed struct {
	prefix string
}

func (p *prefixed) Prefix() string          { return p.prefix }
func (p *prefixed) SetPrefix(prefix string) { p.prefix = prefix }
