package ws

import (
	"encoding/json"

	"memory_game/internal/game"
)

// client → server
type Inbound struct {
	Type  string `json:"type"`
	Value *int   `json:"value,omitempty"` // card id for select
}

// server → client
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ResultPayload struct {
	SessionID string `json:"session_id"`
	FinalTime string `json:"final_time"`
	Elapsed   int    `json:"elapsed_seconds"`
}

type RestartedPayload struct {
	Token string    `json:"token"`
	State game.View `json:"state"`
}

type ErrorPayload struct {
	Message  string `json:"message"`
	Reason   string `json:"reason,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func encode(typ string, payload any) []byte {
	b, err := json.Marshal(Message{Type: typ, Payload: payload})
	if err != nil {
		// payloads are plain structs; this only fires on a programming error
		b, _ = json.Marshal(Message{Type: MsgError, Payload: ErrorPayload{Message: "encode failed"}})
	}
	return b
}

func stateMessage(snap game.Snapshot) []byte {
	return encode(MsgState, game.NewView(snap))
}

func resultMessage(snap game.Snapshot) []byte {
	return encode(MsgResult, ResultPayload{
		SessionID: snap.ID,
		FinalTime: snap.Time,
		Elapsed:   snap.ElapsedSeconds,
	})
}
