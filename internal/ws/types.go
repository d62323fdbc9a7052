package ws

const (
	// client - server
	MsgSelect  = "select"
	MsgRestart = "restart"
	MsgPing    = "ping"

	// server - client
	MsgReady       = "ready"
	MsgState       = "state"
	MsgResult      = "result"
	MsgRestarted   = "restarted"
	MsgSetupFailed = "setup_failed"
	MsgError       = "error"
	MsgPong        = "pong"
	MsgClosed      = "closed"
)
