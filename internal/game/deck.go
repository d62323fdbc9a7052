package game

import "math/rand"

// BuildDeck samples pairCount symbols, pairs them and shuffles the result.
// When there are not more symbols than pairCount every symbol is used as is.
// The input slice is never modified.
func BuildDeck(symbols []string, pairCount int, rng *rand.Rand) []Card {
	picked := sample(symbols, pairCount, rng)
	letters := shuffle(duplicate(picked), rng)

	cards := make([]Card, len(letters))
	for i, s := range letters {
		cards[i] = Card{ID: i, Symbol: s, State: Hidden}
	}
	return cards
}

func sample(symbols []string, count int, rng *rand.Rand) []string {
	if len(symbols) <= count {
		return append([]string(nil), symbols...)
	}
	return shuffle(symbols, rng)[:max(count, 0)]
}

func duplicate(symbols []string) []string {
	out := make([]string, 0, len(symbols)*2)
	for _, s := range symbols {
		out = append(out, s, s)
	}
	return out
}

// shuffle returns a Fisher-Yates shuffled copy.
func shuffle(symbols []string, rng *rand.Rand) []string {
	out := append([]string(nil), symbols...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
