package domain

import "fmt"

// Letters is the static resource served to (and fetched by) the symbol source.
type Letters struct {
	Letters []string `json:"letters"`
}

// Validate checks that the document is usable as an ordered list of unique symbols.
// An empty list is valid here; Setup rejects it separately.
func (l *Letters) Validate() error {
	if l.Letters == nil {
		return fmt.Errorf("%w: letters field missing", ErrMalformedLetters)
	}
	seen := make(map[string]struct{}, len(l.Letters))
	for i, s := range l.Letters {
		if s == "" {
			return fmt.Errorf("%w: empty letter at index %d", ErrMalformedLetters, i)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate letter %q", ErrMalformedLetters, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
