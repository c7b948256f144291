package text

import (
	"fmt"
	"strconv"
	"strings"
)

// Str converts any to a string, returning "" for nil.
func Str(any interface{}) string {
	if any == nil {
		return ""
	}
	switch t := any.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func FirstNotEmpty(choices ...string) string {
	for _, val := range choices {
		if val != "" {
			return val
		}
	}
	return ""
}

// ParseInt parses the integer from the text; in case of error,
// returns the default value.
func ParseInt(text string, defval int) int {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return defval
	}
	return int(v)
}

// ParseBool reads yes/no style flags from config text, returning defval for
// anything unrecognized.
func ParseBool(text string, defval bool) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	case "0", "f", "false", "n", "no", "off":
		return false
	}
	return defval
}

// Lines splits text into lines, dropping the trailing \r of CRLF line ends.
// A final newline does not produce a trailing empty line.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
