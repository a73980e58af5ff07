package godatabend

import (
	"strings"
)

// Kind is the canonical category a column type resolves to.
type Kind uint8

const (
	// KindString is also the fallback for every unrecognized type name.
	KindString Kind = iota
	KindBoolean
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindDate
	KindDateTime
	KindTimestamp
	KindArray
	KindTuple
	KindMap
	KindVariant
	KindVariantArray
	KindUUID
	KindIPv4
	KindNull

	kindCount
)

var kindNames = [kindCount]string{
	KindString:       "string",
	KindBoolean:      "boolean",
	KindInt8:         "int8",
	KindInt16:        "int16",
	KindInt32:        "int32",
	KindInt64:        "int64",
	KindUInt8:        "uint8",
	KindUInt16:       "uint16",
	KindUInt32:       "uint32",
	KindUInt64:       "uint64",
	KindFloat32:      "float32",
	KindFloat64:      "float64",
	KindDate:         "date",
	KindDateTime:     "datetime",
	KindTimestamp:    "timestamp",
	KindArray:        "array",
	KindTuple:        "tuple",
	KindMap:          "map",
	KindVariant:      "variant",
	KindVariantArray: "variantarray",
	KindUUID:         "uuid",
	KindIPv4:         "ipv4",
	KindNull:         "null",
}

// kindTable maps lower-cased base type names to kinds. Lookup is exact.
var kindTable = map[string]Kind{
	"boolean":      KindBoolean,
	"int8":         KindInt8,
	"int16":        KindInt16,
	"int32":        KindInt32,
	"int64":        KindInt64,
	"uint8":        KindUInt8,
	"uint16":       KindUInt16,
	"uint32":       KindUInt32,
	"uint64":       KindUInt64,
	"float32":      KindFloat32,
	"float64":      KindFloat64,
	"string":       KindString,
	"date":         KindDate,
	"datetime":     KindDateTime,
	"timestamp":    KindTimestamp,
	"array":        KindArray,
	"tuple":        KindTuple,
	"struct":       KindTuple,
	"map":          KindMap,
	"variant":      KindVariant,
	"variantarray": KindVariantArray,
	"uuid":         KindUUID,
	"ipv4":         KindIPv4,
	"null":         KindNull,
}

// String returns the lower-case display name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindString]
	}
	return kindNames[k]
}

// IsCompound reports whether values of the kind carry inner members.
func (k Kind) IsCompound() bool {
	switch k {
	case KindArray, KindTuple, KindMap:
		return true
	}
	return false
}

const nullablePrefix = "nullable("

// TypeDesc is the resolved, immutable description of a column type.
type TypeDesc struct {
	rawName  string
	kind     Kind
	nullable bool
	args     []string
}

// RawName returns the descriptor exactly as the server sent it.
func (td TypeDesc) RawName() string { return td.rawName }

// Kind returns the canonical kind.
func (td TypeDesc) Kind() Kind { return td.kind }

// Nullable reports whether the type was wrapped in Nullable(...).
func (td TypeDesc) Nullable() bool { return td.nullable }

// MemberCount returns the number of top-level members of a compound type,
// and 0 for every other kind.
func (td TypeDesc) MemberCount() int {
	if !td.kind.IsCompound() {
		return 0
	}
	return len(td.args)
}

// Args returns a copy of the top-level argument texts of a compound type.
func (td TypeDesc) Args() []string {
	if !td.kind.IsCompound() || len(td.args) == 0 {
		return nil
	}
	out := make([]string, len(td.args))
	copy(out, td.args)
	return out
}

// Member parses the i-th argument of a compound type. Out of range indexes
// resolve to the string fallback.
func (td TypeDesc) Member(i int) TypeDesc {
	if !td.kind.IsCompound() || i < 0 || i >= len(td.args) {
		return TypeDesc{kind: KindString}
	}
	return ParseTypeDesc(td.args[i])
}

func (td TypeDesc) String() string {
	return td.rawName
}

// ParseTypeDesc resolves a server type descriptor such as
// "Nullable(Tuple(String, Nullable(Int8)))". It never fails: malformed or
// unknown input resolves to a non-nullable string type.
func ParseTypeDesc(raw string) TypeDesc {
	td := TypeDesc{rawName: raw, kind: KindString}
	text := strings.TrimSpace(raw)
	if inner, ok := unwrapNullable(text); ok {
		innerDesc := ParseTypeDesc(inner)
		innerDesc.rawName = raw
		innerDesc.nullable = true
		return innerDesc
	}

	base, args, ok := splitTypeName(text)
	if !ok {
		// unbalanced parentheses: the whole text is the base name
		base, args = text, nil
	}
	kind, found := kindTable[strings.ToLower(base)]
	if !found {
		logger.Tracef("unknown type name %q resolved as %v", raw, KindString)
		return td
	}
	td.kind = kind
	if kind.IsCompound() {
		td.args = args
	}
	return td
}

// unwrapNullable strips one case-insensitive Nullable(...) wrapper when the
// paren matching the opening one closes the text.
func unwrapNullable(text string) (string, bool) {
	if len(text) < len(nullablePrefix)+1 || !strings.EqualFold(text[:len(nullablePrefix)], nullablePrefix) {
		return "", false
	}
	open := len(nullablePrefix) - 1
	closing := matchingParen(text, open)
	if closing != len(text)-1 {
		return "", false
	}
	return strings.TrimSpace(text[open+1 : closing]), true
}

// matchingParen returns the index of the paren closing the one at open, or -1.
func matchingParen(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTypeName splits "Name(a, b(c, d))" into "Name" and ["a", "b(c, d)"].
// ok is false when the parentheses do not close exactly at the end.
func splitTypeName(text string) (base string, args []string, ok bool) {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		if strings.IndexByte(text, ')') >= 0 {
			return "", nil, false
		}
		return text, nil, true
	}
	closing := matchingParen(text, open)
	if closing != len(text)-1 {
		return "", nil, false
	}
	return strings.TrimSpace(text[:open]), splitTopLevel(text[open+1 : closing]), true
}

// splitTopLevel splits on commas that are not nested inside parentheses.
func splitTopLevel(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(list[start:]))
}
