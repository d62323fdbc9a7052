package game

// CardView is a card as shown to the player: hidden cards carry no symbol.
type CardView struct {
	ID     int       `json:"id"`
	State  CardState `json:"state"`
	Symbol string    `json:"symbol,omitempty"`
}

// View is the wire projection of a Snapshot.
type View struct {
	SessionID    string     `json:"session_id"`
	Phase        Phase      `json:"phase"`
	Cards        []CardView `json:"cards"`
	Turn         []int      `json:"turn"`
	Outcome      Outcome    `json:"outcome,omitempty"`
	Time         string     `json:"time"`
	Elapsed      int        `json:"elapsed_seconds"`
	MatchedPairs int        `json:"matched_pairs"`
	TotalPairs   int        `json:"total_pairs"`
	ShowStart    bool       `json:"show_start"`
	ShowResult   bool       `json:"show_result"`
	FinalTime    string     `json:"final_time,omitempty"`
	Version      uint64     `json:"version"`
}

func NewView(s Snapshot) View {
	cards := make([]CardView, len(s.Cards))
	for i, c := range s.Cards {
		cards[i] = CardView{ID: c.ID, State: c.State}
		if c.State != Hidden {
			cards[i].Symbol = c.Symbol
		}
	}
	v := View{
		SessionID:    s.ID,
		Phase:        s.Phase,
		Cards:        cards,
		Turn:         s.Turn,
		Outcome:      s.Outcome,
		Time:         s.Time,
		Elapsed:      s.ElapsedSeconds,
		MatchedPairs: s.MatchedPairs,
		TotalPairs:   s.TotalPairs,
		ShowStart:    s.ShowStart(),
		ShowResult:   s.ShowResult(),
		Version:      s.Version,
	}
	if v.ShowResult {
		v.FinalTime = s.Time
	}
	return v
}
