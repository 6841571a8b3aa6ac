package codec

import (
	"strconv"

	"marketspread/pkg/scanner"

	"github.com/shopspring/decimal"
)

// Encode appends every field of msg to dst in order, each SOH-terminated.
func Encode(dst []byte, msg WireMessage) []byte {
	for _, f := range msg.Fields {
		dst = AppendField(dst, f)
	}
	return dst
}

// AppendField appends one tag=value pair followed by SOH.
func AppendField(dst []byte, f Field) []byte {
	dst = strconv.AppendUint(dst, uint64(f.Tag), 10)
	dst = append(dst, '=')
	switch f.Kind {
	case KindInt:
		dst = strconv.AppendInt(dst, f.Int, 10)
	case KindDecimal:
		dst = append(dst, f.Dec.String()...)
	default:
		dst = append(dst, f.Str...)
	}
	return append(dst, scanner.SOH)
}

// AppendRaw appends an arbitrary tag=value pair, recognized or not.
func AppendRaw(dst []byte, tag uint32, value string) []byte {
	dst = strconv.AppendUint(dst, uint64(tag), 10)
	dst = append(dst, '=')
	dst = append(dst, value...)
	return append(dst, scanner.SOH)
}

// Builder assembles a wire record field by field.
type Builder struct {
	buf []byte
}

func NewBuilder() *Builder {
	return &Builder{buf: make([]byte, 0, 128)}
}

func (b *Builder) Str(tag uint32, v string) *Builder {
	b.buf = AppendField(b.buf, StrField(tag, v))
	return b
}

func (b *Builder) Int(tag uint32, v int64) *Builder {
	b.buf = AppendField(b.buf, IntField(tag, v))
	return b
}

func (b *Builder) Dec(tag uint32, v decimal.Decimal) *Builder {
	b.buf = AppendField(b.buf, DecField(tag, v))
	return b
}

func (b *Builder) Raw(tag uint32, v string) *Builder {
	b.buf = AppendRaw(b.buf, tag, v)
	return b
}

// Bytes returns the record built so far.
func (b *Builder) Bytes() []byte {
	return b.buf
}
