package godatabend

import (
	"strconv"
	"strings"
)

// ColumnHandler is the decode strategy of one kind. Handlers are plain values
// shared by every column and result set.
type ColumnHandler uint8

const (
	// HandlerString passes the raw text through unchanged. Every compound,
	// date-like, variant and identifier kind uses it.
	HandlerString ColumnHandler = iota
	HandlerBoolean
	HandlerInt8
	HandlerInt16
	HandlerInt32
	HandlerInt64
	HandlerUInt8
	HandlerUInt16
	HandlerUInt32
	HandlerUInt64
	HandlerFloat32
	HandlerFloat64
)

// handlerRegistry is indexed by Kind; zero entries are HandlerString.
var handlerRegistry = [kindCount]ColumnHandler{
	KindBoolean: HandlerBoolean,
	KindInt8:    HandlerInt8,
	KindInt16:   HandlerInt16,
	KindInt32:   HandlerInt32,
	KindInt64:   HandlerInt64,
	KindUInt8:   HandlerUInt8,
	KindUInt16:  HandlerUInt16,
	KindUInt32:  HandlerUInt32,
	KindUInt64:  HandlerUInt64,
	KindFloat32: HandlerFloat32,
	KindFloat64: HandlerFloat64,
}

// ResolveHandler returns the handler for the descriptor's kind. It is total:
// kinds without a dedicated handler get HandlerString.
func ResolveHandler(td TypeDesc) ColumnHandler {
	if td.kind >= kindCount {
		return HandlerString
	}
	return handlerRegistry[td.kind]
}

func (h ColumnHandler) String() string {
	switch h {
	case HandlerBoolean:
		return "boolean"
	case HandlerInt8, HandlerInt16, HandlerInt32, HandlerInt64:
		return "int" + strconv.Itoa(h.bitSize())
	case HandlerUInt8, HandlerUInt16, HandlerUInt32, HandlerUInt64:
		return "uint" + strconv.Itoa(h.bitSize())
	case HandlerFloat32, HandlerFloat64:
		return "float" + strconv.Itoa(h.bitSize())
	}
	return "string"
}

func (h ColumnHandler) bitSize() int {
	switch h {
	case HandlerInt8, HandlerUInt8:
		return 8
	case HandlerInt16, HandlerUInt16:
		return 16
	case HandlerInt32, HandlerUInt32, HandlerFloat32:
		return 32
	}
	return 64
}

// Decode converts the raw text of one non-null cell.
func (h ColumnHandler) Decode(raw string) (Value, error) {
	switch h {
	case HandlerBoolean:
		switch {
		case strings.EqualFold(raw, "true"):
			return BoolValue(true), nil
		case strings.EqualFold(raw, "false"):
			return BoolValue(false), nil
		}
		return Value{}, invalidLiteralError(KindBoolean, raw, nil)
	case HandlerInt8, HandlerInt16, HandlerInt32, HandlerInt64:
		i, err := strconv.ParseInt(raw, 10, h.bitSize())
		if err != nil {
			return Value{}, invalidLiteralError(h.kind(), raw, err)
		}
		return Int64Value(i), nil
	case HandlerUInt8, HandlerUInt16, HandlerUInt32, HandlerUInt64:
		// ParseUint rejects a leading sign, so negative literals fail here
		u, err := strconv.ParseUint(raw, 10, h.bitSize())
		if err != nil {
			return Value{}, invalidLiteralError(h.kind(), raw, err)
		}
		return Uint64Value(u), nil
	case HandlerFloat32, HandlerFloat64:
		f, err := strconv.ParseFloat(raw, h.bitSize())
		if err != nil {
			return Value{}, invalidLiteralError(h.kind(), raw, err)
		}
		return Float64Value(f), nil
	}
	return StringValue(raw), nil
}

func (h ColumnHandler) kind() Kind {
	for k, handler := range handlerRegistry {
		if handler == h && Kind(k) != KindString {
			return Kind(k)
		}
	}
	return KindString
}

// DecodeCell decodes one cell of a column. A nil raw value is the wire's null
// sentinel: it decodes to null for nullable columns and for the Null kind and
// is rejected for every other column.
func DecodeCell(td TypeDesc, h ColumnHandler, raw *string) (Value, error) {
	if td.kind == KindNull {
		return NullValue(), nil
	}
	if raw == nil {
		if td.nullable {
			return NullValue(), nil
		}
		return Value{}, unexpectedNullError(td.kind)
	}
	return h.Decode(*raw)
}
