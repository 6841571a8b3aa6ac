package codec

import (
	"math"
	"strconv"

	"marketspread/pkg/exception"
	"marketspread/pkg/scanner"

	"github.com/shopspring/decimal"
)

// Decimal values beyond these bounds are malformed.
const (
	maxDecimalLen      = 32
	maxDecimalExponent = 18
)

// DecodeError reports why a record could not be decoded. Err is one of
// exception.ErrDecodeEmpty or exception.ErrDecodeMalformedToken.
type DecodeError struct {
	Err   error
	Tag   uint32
	Value string
}

func (e *DecodeError) Error() string {
	if e.Err == exception.ErrDecodeEmpty {
		return e.Err.Error()
	}
	return e.Err.Error() + ", tag: " + strconv.FormatUint(uint64(e.Tag), 10) + ", value: " + strconv.Quote(e.Value)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode splits a SOH-delimited record into its recognized fields.
// Unrecognized tags and empty tokens are skipped.
func Decode(raw []byte) (WireMessage, error) {
	if len(raw) == 0 {
		return WireMessage{}, &DecodeError{Err: exception.ErrDecodeEmpty}
	}

	fields := make([]Field, 0, len(Tags))
	rest := raw
	for {
		token, next, ok := scanner.NextToken(rest, scanner.SOH)
		if !ok {
			break
		}
		rest = next
		if len(token) == 0 {
			continue
		}

		tagBytes, value, hasValue := scanner.SplitTagValue(token)
		tag, ok := parseTag(tagBytes)
		if !ok {
			continue
		}
		spec, ok := Lookup(tag)
		if !ok {
			continue
		}
		if !hasValue {
			return WireMessage{}, &DecodeError{Err: exception.ErrDecodeMalformedToken, Tag: tag, Value: string(token)}
		}

		field, ok := parseField(spec, value)
		if !ok {
			return WireMessage{}, &DecodeError{Err: exception.ErrDecodeMalformedToken, Tag: tag, Value: string(value)}
		}
		fields = append(fields, field)
	}

	return WireMessage{Fields: fields}, nil
}

// parseTag accepts canonical decimal tags only, so "011" is not tag 11.
func parseTag(b []byte) (uint32, bool) {
	if len(b) > 1 && b[0] == '0' {
		return 0, false
	}
	v, ok := scanner.ParseUint(b)
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

func parseField(spec TagSpec, value []byte) (Field, bool) {
	field := Field{Tag: spec.Tag, Name: spec.Name, Kind: spec.Kind}
	switch spec.Kind {
	case KindInt:
		v, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return Field{}, false
		}
		field.Int = v
	case KindDecimal:
		if len(value) > maxDecimalLen {
			return Field{}, false
		}
		v, err := decimal.NewFromString(string(value))
		if err != nil || v.Exponent() > maxDecimalExponent || v.Exponent() < -maxDecimalExponent {
			return Field{}, false
		}
		field.Dec = v
	default:
		field.Str = string(value)
	}
	return field, true
}
