package message

import (
	"strings"

	"marketspread/internal/codec"
	"marketspread/internal/schema"
	"marketspread/pkg/exception"

	"github.com/shopspring/decimal"
)

// ClassifyError reports why a decoded record is not a usable message. Err is one
// of exception.ErrClassifyUnknownType or exception.ErrClassifyMissingRequiredField.
type ClassifyError struct {
	Err   error
	Type  string
	Field string
}

func (e *ClassifyError) Error() string {
	if e.Field != "" {
		return e.Err.Error() + ", type: " + e.Type + ", field: " + e.Field
	}
	return e.Err.Error() + ", type: " + e.Type
}

func (e *ClassifyError) Unwrap() error {
	return e.Err
}

// KindOf resolves a msg_type value. Both FIX MsgType codes and the plain names
// used by upstream feeds are accepted.
func KindOf(msgType string) schema.MessageKind {
	switch strings.ToLower(strings.TrimSpace(msgType)) {
	case "s", "nbbo", "quote":
		return schema.MessageKindQuote
	case "d", "order":
		return schema.MessageKindOrder
	case "8", "fill":
		return schema.MessageKindFill
	case "0", "heartbeat":
		return schema.MessageKindHeartbeat
	default:
		return schema.MessageKindUnknown
	}
}

var (
	quoteRequired = []uint32{codec.TagSymbol, codec.TagBid, codec.TagOffer}
	orderRequired = []uint32{codec.TagOrderID, codec.TagSymbol, codec.TagSide, codec.TagOrderQty, codec.TagPrice}
)

// Classify turns a decoded record into one of the message variants. Required
// fields are checked before any variant is built.
func Classify(msg codec.WireMessage) (schema.Message, error) {
	typeField, ok := msg.Get(codec.TagMsgType)
	if !ok {
		return nil, &ClassifyError{Err: exception.ErrClassifyUnknownType}
	}
	msgType := typeField.Str

	kind := KindOf(msgType)
	switch kind {
	case schema.MessageKindQuote:
		if err := requireFields(msg, msgType, quoteRequired); err != nil {
			return nil, err
		}
		return schema.Quote{
			Header: header(msg),
			Symbol: str(msg, codec.TagSymbol),
			Bid:    dec(msg, codec.TagBid),
			Offer:  dec(msg, codec.TagOffer),
		}, nil
	case schema.MessageKindOrder:
		if err := requireFields(msg, msgType, orderRequired); err != nil {
			return nil, err
		}
		return schema.Order{
			Header:   header(msg),
			OrderID:  str(msg, codec.TagOrderID),
			Symbol:   str(msg, codec.TagSymbol),
			Side:     side(msg),
			Quantity: dec(msg, codec.TagOrderQty),
			Price:    dec(msg, codec.TagPrice),
		}, nil
	case schema.MessageKindFill:
		return schema.Fill{
			Header:   header(msg),
			OrderID:  str(msg, codec.TagOrderID),
			Symbol:   str(msg, codec.TagSymbol),
			Side:     side(msg),
			Quantity: dec(msg, codec.TagOrderQty),
			Price:    dec(msg, codec.TagPrice),
		}, nil
	case schema.MessageKindHeartbeat:
		return schema.Heartbeat{Header: header(msg)}, nil
	default:
		return nil, &ClassifyError{Err: exception.ErrClassifyUnknownType, Type: msgType}
	}
}

// requireFields treats an empty string value as absent.
func requireFields(msg codec.WireMessage, msgType string, tags []uint32) error {
	for _, tag := range tags {
		f, ok := msg.Get(tag)
		if !ok || (f.Kind == codec.KindString && f.Str == "") {
			return &ClassifyError{Err: exception.ErrClassifyMissingRequiredField, Type: msgType, Field: codec.Name(tag)}
		}
	}
	return nil
}

func header(msg codec.WireMessage) schema.Header {
	return schema.Header{
		MessageID:   str(msg, codec.TagMessageID),
		ClientID:    str(msg, codec.TagClientID),
		MessageTime: str(msg, codec.TagMessageTime),
	}
}

func str(msg codec.WireMessage, tag uint32) string {
	f, _ := msg.Get(tag)
	return f.Str
}

func dec(msg codec.WireMessage, tag uint32) decimal.Decimal {
	f, _ := msg.Get(tag)
	return f.Dec
}

func side(msg codec.WireMessage) schema.OrderSide {
	f, _ := msg.Get(codec.TagSide)
	return schema.OrderSide(f.Int)
}
