package symbols

import (
	"context"

	"memory_game/internal/domain"
)

// LetterLister is the subset of the letters repository the source needs.
type LetterLister interface {
	List(ctx context.Context) ([]string, error)
}

// PostgresSource reads the vocabulary from the letters table.
type PostgresSource struct {
	Repo LetterLister
}

func (s PostgresSource) Letters(ctx context.Context) ([]string, error) {
	letters, err := s.Repo.List(ctx)
	if err != nil {
		return nil, unavailable("list letters", err)
	}
	// An empty table is an empty vocabulary, not a malformed one.
	if letters == nil {
		letters = []string{}
	}
	doc := domain.Letters{Letters: letters}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return letters, nil
}
