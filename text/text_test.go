package text

import (
	"reflect"
	"testing"
)

var linesTests = []struct {
	text  string
	lines []string
}{
	{"", nil},
	{"a b", []string{"a b"}},
	{"a b\n", []string{"a b"}},
	{"a b\r\nc d\r\n", []string{"a b", "c d"}},
	{"a b\n\nc d", []string{"a b", "", "c d"}},
}

func TestLines(t *testing.T) {
	for _, test := range linesTests {
		if res := Lines(test.text); !reflect.DeepEqual(res, test.lines) {
			t.Errorf("Lines(%#v) == %#v, expected %#v", test.text, res, test.lines)
		}
	}
}

func TestParseInt(t *testing.T) {
	for _, test := range []struct {
		text     string
		defval   int
		expected int
	}{
		{"42", 0, 42},
		{" 7 ", 0, 7},
		{"cow", 3, 3},
		{"", -1, -1},
	} {
		if actual := ParseInt(test.text, test.defval); actual != test.expected {
			t.Errorf("ParseInt(%#v, %d) == %d, want %d", test.text, test.defval, actual, test.expected)
		}
	}
}

func TestParseBool(t *testing.T) {
	for _, test := range []struct {
		text     string
		defval   bool
		expected bool
	}{
		{"true", false, true},
		{"Yes", false, true},
		{"off", true, false},
		{"maybe", true, true},
		{"", false, false},
	} {
		if actual := ParseBool(test.text, test.defval); actual != test.expected {
			t.Errorf("ParseBool(%#v, %v) == %v, want %v", test.text, test.defval, actual, test.expected)
		}
	}
}

func TestFirstNotEmpty(t *testing.T) {
	if res := FirstNotEmpty("", "", "rules.txt", "other"); res != "rules.txt" {
		t.Errorf("FirstNotEmpty == %#v, want %#v", res, "rules.txt")
	}
	if res := FirstNotEmpty(); res != "" {
		t.Errorf("FirstNotEmpty() == %#v, want empty", res)
	}
}
