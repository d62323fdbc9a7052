package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"memory_game/internal/game"
	"memory_game/internal/http/handlers"
	"memory_game/internal/logger"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	view game.View
}

// await reads frames until a state satisfying match arrives, or a result when typ is "result".
func (c *client) await(typ string, match func(game.View) bool, timeout time.Duration) json.RawMessage {
	deadline := time.Now().Add(timeout)
	for {
		c.conn.SetReadDeadline(deadline)
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Fatal("read", "waiting_for", typ, "error", err)
		}
		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			logger.Fatal("bad frame", "error", err)
		}
		switch f.Type {
		case "state":
			var v game.View
			if err := json.Unmarshal(f.Payload, &v); err == nil {
				c.view = v
			}
		case "closed", "setup_failed":
			logger.Fatal("session ended by server", "type", f.Type, "payload", string(f.Payload))
		}
		if f.Type == typ && (typ != "state" || match == nil || match(c.view)) {
			return f.Payload
		}
	}
}

func (c *client) pick(id int) {
	msg := `{"type":"select","value":` + strconv.Itoa(id) + `}`
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		logger.Fatal("write", "error", err)
	}
}

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	addr := flag.String("addr", "127.0.0.1:"+port, "server host:port")
	flag.Parse()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	res, err := http.Post("http://"+*addr+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		logger.Fatal("create session", "error", err)
	}
	var sess handlers.SessionResponse
	err = json.NewDecoder(res.Body).Decode(&sess)
	res.Body.Close()
	if res.StatusCode != http.StatusCreated || err != nil {
		logger.Fatal("create session", "status", res.StatusCode, "error", err)
	}
	logger.Info("session created", "session_id", sess.State.SessionID, "cards", len(sess.State.Cards))

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *addr, sess.Token), nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	defer conn.Close()
	c := &client{conn: conn}

	c.await("state", func(v game.View) bool { return v.Phase == game.PhasePlaying }, game.IntroDelay+2*time.Second)

	seen := map[int]string{}
	matched := map[int]bool{}
	partner := func(id int) int {
		for other, sym := range seen {
			if other != id && !matched[other] && sym == seen[id] {
				return other
			}
		}
		return -1
	}
	unknown := func(skip int) int {
		for _, card := range c.view.Cards {
			if _, ok := seen[card.ID]; !ok && !matched[card.ID] && card.ID != skip {
				return card.ID
			}
		}
		return -1
	}

	turns := 0
	for c.view.Phase != game.PhaseWon {
		first := -1
		for id := range seen {
			if !matched[id] && partner(id) >= 0 {
				first = id
				break
			}
		}
		if first < 0 {
			first = unknown(-1)
		}
		c.pick(first)
		c.await("state", func(v game.View) bool { return len(v.Turn) == 1 }, 2*time.Second)
		seen[first] = c.view.Cards[first].Symbol

		second := partner(first)
		if second < 0 {
			second = unknown(first)
		}
		c.pick(second)
		c.await("state", func(v game.View) bool { return v.Phase == game.PhaseResolving }, 2*time.Second)
		seen[second] = c.view.Cards[second].Symbol

		c.await("state", func(v game.View) bool { return v.Outcome != game.OutcomeNone }, 2*time.Second)
		turns++
		if c.view.Outcome == game.OutcomeMatch {
			matched[first], matched[second] = true, true
			continue
		}
		c.await("state", func(v game.View) bool { return v.Phase == game.PhasePlaying }, 3*time.Second)
	}

	c.await("result", nil, 2*time.Second)
	logger.Info("smoke test finished", "turns", turns, "time", c.view.FinalTime)
}
