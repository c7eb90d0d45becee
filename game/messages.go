package game

import (
	"api/maze"
	"encoding/json"
)

// Incoming and outgoing frames share the same envelope: a type tag plus a
// type-specific data document. Frames with an unknown type are dropped
// without a reply.
const (
	MsgPlayers   = "players"
	MsgStartGame = "startGame"
	MsgMove      = "move"
	MsgEnd       = "end"
	MsgError     = "error"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// PlayerInfo is the display identity of a connected participant.
type PlayerInfo struct {
	Id       string `json:"id"`
	Username string `json:"username"`
}

type startGameData struct {
	CurrentPlayer *maze.PlayerData `json:"currentPlayer"`
}

type moveData struct {
	Player PlayerInfo      `json:"player"`
	Move   json.RawMessage `json:"move"`
}

type errorData struct {
	Message string `json:"message"`
}

func marshalEvent(msgType string, data any) ([]byte, error) {
	return json.Marshal(outEnvelope{Type: msgType, Data: data})
}
