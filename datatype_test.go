package godatabend

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var scalarKinds = map[string]Kind{
	"Boolean":      KindBoolean,
	"Int8":         KindInt8,
	"Int16":        KindInt16,
	"Int32":        KindInt32,
	"Int64":        KindInt64,
	"UInt8":        KindUInt8,
	"UInt16":       KindUInt16,
	"UInt32":       KindUInt32,
	"UInt64":       KindUInt64,
	"Float32":      KindFloat32,
	"Float64":      KindFloat64,
	"String":       KindString,
	"Date":         KindDate,
	"DateTime":     KindDateTime,
	"Timestamp":    KindTimestamp,
	"Variant":      KindVariant,
	"VariantArray": KindVariantArray,
	"UUID":         KindUUID,
	"IPv4":         KindIPv4,
	"Null":         KindNull,
}

func TestParseScalarTypes(t *testing.T) {
	for name, kind := range scalarKinds {
		for _, raw := range []string{name, strings.ToLower(name), strings.ToUpper(name)} {
			t.Run(raw, func(t *testing.T) {
				td := ParseTypeDesc(raw)
				assertEqualE(t, td.Kind(), kind)
				assertFalseE(t, td.Nullable())
				assertEqualE(t, td.MemberCount(), 0)
				assertEqualE(t, td.RawName(), raw)

				nullable := ParseTypeDesc("Nullable(" + raw + ")")
				assertEqualE(t, nullable.Kind(), kind)
				assertTrueE(t, nullable.Nullable())
			})
		}
	}
}

func TestParseUnknownTypes(t *testing.T) {
	for _, raw := range []string{"Decimal(38, 10)", "Bitmap", "Geometry", "Int128", "uint", "Nullabl(Int8)"} {
		t.Run(raw, func(t *testing.T) {
			td := ParseTypeDesc(raw)
			assertEqualE(t, td.Kind(), KindString)
			assertFalseE(t, td.Nullable())

			nullable := ParseTypeDesc("Nullable(" + raw + ")")
			assertEqualE(t, nullable.Kind(), KindString)
			assertTrueE(t, nullable.Nullable())
		})
	}
}

func TestParseCompoundTypes(t *testing.T) {
	testcases := []struct {
		raw      string
		kind     Kind
		nullable bool
		args     []string
	}{
		{"Nullable(Tuple(String, Nullable(Int8)))", KindTuple, true, []string{"String", "Nullable(Int8)"}},
		{"MAP(STRING, STRING)", KindMap, false, []string{"STRING", "STRING"}},
		{"Array(Nullable(Int32))", KindArray, false, []string{"Nullable(Int32)"}},
		{"Struct(a Int8, b Map(String, Array(Int8)), c Tuple(Int8, Int8))", KindTuple, false,
			[]string{"a Int8", "b Map(String, Array(Int8))", "c Tuple(Int8, Int8)"}},
		{"  nullable( map(string, tuple(int8, string)) )  ", KindMap, true, []string{"string", "tuple(int8, string)"}},
		{"Tuple()", KindTuple, false, nil},
		{"Array", KindArray, false, nil},
	}
	for _, test := range testcases {
		t.Run(test.raw, func(t *testing.T) {
			td := ParseTypeDesc(test.raw)
			assertEqualE(t, td.Kind(), test.kind)
			assertEqualE(t, td.Nullable(), test.nullable)
			assertEqualE(t, td.MemberCount(), len(test.args))
			if diff := cmp.Diff(test.args, td.Args()); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKindDisplayNames(t *testing.T) {
	assertEqualE(t, ParseTypeDesc("Nullable(Tuple(String, Nullable(Int8)))").Kind().String(), "tuple")
	assertEqualE(t, ParseTypeDesc("MAP(STRING, STRING)").Kind().String(), "map")
	assertEqualE(t, ParseTypeDesc("Struct(Int8)").Kind().String(), "tuple")
	assertEqualE(t, Kind(200).String(), "string")
}

func TestParseMalformedTypes(t *testing.T) {
	testcases := []struct {
		raw      string
		nullable bool
	}{
		{"", false},
		{"   ", false},
		{"Tuple(String, Nullable(Int8)))", false},
		{"Tuple(String, Nullable(Int8)", false},
		{"Int8)", false},
		{"Array(Int8) trailing", false},
		{"Nullable(Int8) trailing", false},
		{"Nullable()", true},
		{"(Int8)", false},
	}
	for _, test := range testcases {
		t.Run(test.raw, func(t *testing.T) {
			td := ParseTypeDesc(test.raw)
			assertEqualE(t, td.Kind(), KindString)
			assertEqualE(t, td.Nullable(), test.nullable)
			assertEqualE(t, td.MemberCount(), 0)
		})
	}
}

func TestNullableUnwrapsOneLevel(t *testing.T) {
	td := ParseTypeDesc("Nullable(Nullable(Int8))")
	assertEqualE(t, td.Kind(), KindInt8)
	assertTrueE(t, td.Nullable())
	assertEqualE(t, td.RawName(), "Nullable(Nullable(Int8))")
}

func TestParseIsDeterministic(t *testing.T) {
	raw := "Nullable(Map(String, Tuple(Int8, Array(String))))"
	assertDeepEqualE(t, ParseTypeDesc(raw), ParseTypeDesc(raw))
}

func TestMember(t *testing.T) {
	td := ParseTypeDesc("Tuple(String, Nullable(Int8), Array(UInt16))")
	assertEqualE(t, td.Member(0).Kind(), KindString)
	second := td.Member(1)
	assertEqualE(t, second.Kind(), KindInt8)
	assertTrueE(t, second.Nullable())
	third := td.Member(2)
	assertEqualE(t, third.Kind(), KindArray)
	assertEqualE(t, third.Member(0).Kind(), KindUInt16)
	assertEqualE(t, td.Member(3).Kind(), KindString)
	assertEqualE(t, td.Member(-1).Kind(), KindString)
	assertEqualE(t, ParseTypeDesc("Int8").Member(0).Kind(), KindString)
}

func TestArgsReturnsCopy(t *testing.T) {
	td := ParseTypeDesc("Tuple(Int8, String)")
	args := td.Args()
	args[0] = "Boolean"
	assertEqualE(t, td.Member(0).Kind(), KindInt8)
}
