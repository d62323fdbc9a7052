package domain

import (
	"errors"
	"fmt"
)

// Fatal setup conditions. Both end the attempt and send the player back to the start screen.
var (
	ErrSourceUnavailable = errors.New("symbol source unavailable")
	ErrDegenerateDeck    = errors.New("symbol source returned no symbols")
)

// ErrMalformedLetters is returned when the letters document cannot be used as a symbol list.
// It is a SourceUnavailable condition.
var ErrMalformedLetters = fmt.Errorf("%w: malformed letters document", ErrSourceUnavailable)

var ErrSessionNotFound = errors.New("session not found")

// IsSetupFailure reports whether err aborts Setup.
func IsSetupFailure(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrDegenerateDeck)
}

// SetupFailureReason returns a short label for metrics and client messages.
func SetupFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrDegenerateDeck):
		return "degenerate_deck"
	case errors.Is(err, ErrMalformedLetters):
		return "malformed"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	default:
		return "unknown"
	}
}
