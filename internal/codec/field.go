package codec

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Field is one decoded tag=value pair. Only the member matching Kind is set.
type Field struct {
	Tag  uint32
	Name string
	Kind Kind
	Str  string
	Int  int64
	Dec  decimal.Decimal
}

// String renders the value the way it appears on the wire.
func (f Field) String() string {
	switch f.Kind {
	case KindInt:
		return strconv.FormatInt(f.Int, 10)
	case KindDecimal:
		return f.Dec.String()
	default:
		return f.Str
	}
}

// Equal compares tag and typed value.
func (f Field) Equal(other Field) bool {
	if f.Tag != other.Tag || f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case KindInt:
		return f.Int == other.Int
	case KindDecimal:
		return f.Dec.Equal(other.Dec)
	default:
		return f.Str == other.Str
	}
}

// WireMessage is the ordered list of recognized fields decoded from one record.
type WireMessage struct {
	Fields []Field
}

// Get returns the last occurrence of tag.
func (m WireMessage) Get(tag uint32) (Field, bool) {
	for i := len(m.Fields) - 1; i >= 0; i-- {
		if m.Fields[i].Tag == tag {
			return m.Fields[i], true
		}
	}
	return Field{}, false
}

// Has reports whether tag was present.
func (m WireMessage) Has(tag uint32) bool {
	_, ok := m.Get(tag)
	return ok
}

// Len returns the number of kept fields.
func (m WireMessage) Len() int {
	return len(m.Fields)
}

// StrField builds a string field for a recognized tag.
func StrField(tag uint32, v string) Field {
	return Field{Tag: tag, Name: Name(tag), Kind: KindString, Str: v}
}

// IntField builds an integer field for a recognized tag.
func IntField(tag uint32, v int64) Field {
	return Field{Tag: tag, Name: Name(tag), Kind: KindInt, Int: v}
}

// DecField builds a decimal field for a recognized tag.
func DecField(tag uint32, v decimal.Decimal) Field {
	return Field{Tag: tag, Name: Name(tag), Kind: KindDecimal, Dec: v}
}
