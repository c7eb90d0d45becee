package game

import (
	"time"

	"github.com/gorilla/websocket"
)

// Close codes sent to clients. 4001 covers both a bad credential and an
// unresolvable room, the client treats them the same.
const (
	CloseUnauthorized = 4001
)

// Conn is the transport a participant talks through. It exists so room and
// broker logic can be tested without a real websocket on the other end.
type Conn interface {
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
	Close(code int, reason string)
}

type websocketConnection struct {
	socket *websocket.Conn
}

func NewWebsocketConnection(conn *websocket.Conn) *websocketConnection {
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return &websocketConnection{socket: conn}
}

func (wc *websocketConnection) Write(data []byte) error {
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(code int, reason string) {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	wc.socket.Close()
}
