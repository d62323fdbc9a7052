package game

import "time"

// CardState is the visibility of a single card.
type CardState string

const (
	Hidden   CardState = "hidden"
	Revealed CardState = "revealed"
	Matched  CardState = "matched"
)

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseIntro     Phase = "intro"
	PhasePlaying   Phase = "playing"
	PhaseResolving Phase = "resolving"
	PhaseWon       Phase = "won"
)

// Outcome is the result of the last evaluated turn.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
)

// Card is one face-down tile. ID equals its index in the deck.
type Card struct {
	ID     int       `json:"id"`
	Symbol string    `json:"symbol"`
	State  CardState `json:"state"`
}

const (
	// PairCount is the number of pairs dealt per attempt.
	PairCount = 12

	IntroDelay    = 3 * time.Second
	EvaluateDelay = 500 * time.Millisecond
	// MismatchDelay is measured from the second selection, so a mismatched pair stays
	// visible for MismatchDelay-EvaluateDelay after it is marked as a mismatch.
	MismatchDelay = 2 * time.Second

	TickInterval = time.Second
)
