package object

import (
	"encoding/base64"
	"encoding/hex"
)

// Binary holds raw bytes, for example the result of a file read.
type Binary struct {
	prefixed
	Data []byte
}

func NewBinary(data []byte) *Binary {
	return &Binary{Data: data}
}

func (b *Binary) Type() ObjectType { return BINARY_OBJ }

func (b *Binary) Identify() string {
	return "binary:" + hex.EncodeToString(b.Data)
}

func (b *Binary) Attribute(name string) (Value, bool) {
	switch name {
	case "length":
		return ElementFromInt(int64(len(b.Data))), true
	case "utf8_decode":
		return NewElement(string(b.Data)), true
	case "to_base64":
		return NewElement(base64.StdEncoding.EncodeToString(b.Data)), true
	case "to_hex":
		return NewElement(hex.EncodeToString(b.Data)), true
	}
	return nil, false
}
