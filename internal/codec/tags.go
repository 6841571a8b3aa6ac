package codec

// Kind is the declared semantic type of a recognized tag.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindString
	KindInt
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

const (
	TagMessageID   uint32 = 0
	TagClientID    uint32 = 1
	TagOrderID     uint32 = 11
	TagMsgType     uint32 = 35
	TagOrderQty    uint32 = 38
	TagPrice       uint32 = 44
	TagSide        uint32 = 54
	TagSymbol      uint32 = 55
	TagMessageTime uint32 = 60
	TagBid         uint32 = 132
	TagOffer       uint32 = 133
)

// TagSpec describes one recognized tag.
type TagSpec struct {
	Tag  uint32
	Name string
	Kind Kind
}

// Tags lists every tag the decoder keeps. Anything else is dropped.
var Tags = []TagSpec{
	{TagMessageID, "message_id", KindString},
	{TagClientID, "client_id", KindString},
	{TagOrderID, "order_id", KindString},
	{TagMsgType, "msg_type", KindString},
	{TagOrderQty, "order_qty", KindDecimal},
	{TagPrice, "price", KindDecimal},
	{TagSide, "side", KindInt},
	{TagSymbol, "symbol", KindString},
	{TagMessageTime, "message_time", KindString},
	{TagBid, "bid", KindDecimal},
	{TagOffer, "offer", KindDecimal},
}

var tagIndex = func() map[uint32]TagSpec {
	m := make(map[uint32]TagSpec, len(Tags))
	for _, spec := range Tags {
		m[spec.Tag] = spec
	}
	return m
}()

// Lookup returns the spec of a recognized tag.
func Lookup(tag uint32) (TagSpec, bool) {
	spec, ok := tagIndex[tag]
	return spec, ok
}

// Name returns the field name of a tag, or "" when the tag is not recognized.
func Name(tag uint32) string {
	return tagIndex[tag].Name
}
