package scanner

// SOH is the FIX field separator.
const SOH byte = 0x01

const maxUint64 = ^uint64(0)

// NextToken returns the bytes before the next sep and the remainder after it.
// ok is false once payload is exhausted.
func NextToken(payload []byte, sep byte) (token []byte, rest []byte, ok bool) {
	if len(payload) == 0 {
		return nil, nil, false
	}
	i := IndexByte(payload, sep)
	if i < 0 {
		return payload, nil, true
	}
	return payload[:i], payload[i+1:], true
}

// SplitTagValue cuts a token at its first '='.
func SplitTagValue(token []byte) (tag []byte, value []byte, ok bool) {
	i := IndexByte(token, '=')
	if i < 0 {
		return token, nil, false
	}
	return token[:i], token[i+1:], true
}

// ParseUint parses an unsigned decimal integer without allocating.
func ParseUint(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if v > (maxUint64-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

func IndexByte(payload []byte, c byte) int {
	for i := 0; i < len(payload); i++ {
		if payload[i] == c {
			return i
		}
	}
	return -1
}

func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// TrimSpace drops leading and trailing ASCII whitespace.
func TrimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && IsSpace(b[start]) {
		start++
	}
	for end > start && IsSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}
