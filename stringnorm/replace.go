package stringnorm

import "strings"

// A Replacer substitutes After for every non-overlapping occurrence of
// Before in the text, scanning left to right.
type Replacer struct {
	Before, After string
}

// Normalize replaces all occurrences of r.Before in text with r.After. An
// empty Before matches nothing.
func (r *Replacer) Normalize(text string) (string, error) {
	if r.Before == "" || !strings.Contains(text, r.Before) {
		return text, nil
	}
	return strings.ReplaceAll(text, r.Before, r.After), nil
}

// ParseReplacers accepts a slice of string pairs, and constructs a List
// normalizer of Replacers for each pair, with Before=pair[0] and
// After=pair[1], applied in the order given.
func ParseReplacers(pairs [][2]string) List {
	if pairs == nil {
		return nil
	}
	replacers := make(List, len(pairs))
	for i, pair := range pairs {
		replacers[i] = &Replacer{
			Before: pair[0],
			After:  pair[1],
		}
	}
	return replacers
}
