package stringnorm

// A Normalizer normalizes a string value.
type Normalizer interface {
	// Normalize copies the given text and normalizes and returns the copy.
	// If the normalizer does not recognize the text, it must return the
	// original text. If it rejects the text as invalid, it returns an error.
	Normalize(text string) (string, error)
}

// A Func adapts a plain string function to a Normalizer.
type Func func(text string) string

// Normalize calls f(text).
func (f Func) Normalize(text string) (string, error) {
	return f(text), nil
}

// A List of Normalizers, which applies each Normalizer in order.
type List []Normalizer

// Normalize applies each normalizer in n to text, returning the final value.
// The first error stops the list.
func (n List) Normalize(text string) (string, error) {
	var err error
	for _, norm := range n {
		if text, err = norm.Normalize(text); err != nil {
			return text, err
		}
	}
	return text, nil
}

// Combine combines a list of normalizers into a single Normalizer
// instance that applies each normalizer in order as a List does.
func Combine(normalizers ...Normalizer) Normalizer {
	combined := make(List, 0, len(normalizers))
	for _, norm := range normalizers {
		if norm != nil {
			combined = append(combined, norm)
		}
	}
	if len(combined) == 1 {
		return combined[0]
	}
	return combined
}

// NormalizeNoErr applies normalizer to text; errors are silently ignored,
// and the original text is returned on error.
func NormalizeNoErr(normalizer Normalizer, text string) string {
	res, err := normalizer.Normalize(text)
	if err != nil {
		return text
	}
	return res
}
