package websocket

import (
	"sync"

	"vehicle-auctions/pkg/utils"

	"github.com/gorilla/websocket"
)

// WebSocketConnection wraps one live socket. Sends are serialized; gorilla
// allows only one concurrent writer per connection.
type WebSocketConnection struct {
	conn    *websocket.Conn
	id      string
	userID  int64
	writeMu sync.Mutex
}

func NewWebSocketConnection(conn *websocket.Conn, userID int64) *WebSocketConnection {
	return &WebSocketConnection{
		conn:   conn,
		id:     utils.GenerateID("conn"),
		userID: userID,
	}
}

func (wsc *WebSocketConnection) Send(message interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	return wsc.conn.WriteJSON(message)
}

func (wsc *WebSocketConnection) Close() error {
	return wsc.conn.Close()
}

func (wsc *WebSocketConnection) ID() string {
	return wsc.id
}

func (wsc *WebSocketConnection) UserID() int64 {
	return wsc.userID
}
