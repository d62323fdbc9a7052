// Package symbols fetches the letter vocabulary the deck is dealt from.
package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"memory_game/internal/domain"
)

// Source supplies an ordered list of unique symbols. Any failure wraps
// domain.ErrSourceUnavailable; the caller never gets a partial list.
type Source interface {
	Letters(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]string, error)

func (f SourceFunc) Letters(ctx context.Context) ([]string, error) { return f(ctx) }

// Decode parses and validates a letters document.
func Decode(r io.Reader) ([]string, error) {
	var doc domain.Letters
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedLetters, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc.Letters, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, op, err)
}
