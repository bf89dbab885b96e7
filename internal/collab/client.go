package collab

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Envelope is the wire frame for all websocket traffic in both
// directions: a command name, an optional document name, and a
// command-specific payload.
type Envelope struct {
	Cmd  string          `json:"cmd"`
	Doc  string          `json:"doc,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// loginData is the payload of the login and auth commands, and of the
// token reply.
type loginData struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// loadData is the payload of the server's load reply.
type loadData struct {
	Doc  string `json:"doc"`
	Text string `json:"text"`
}

// ClientHandler wraps one websocket connection. Outbound messages go
// through a buffered channel drained by a single writer goroutine, so
// any goroutine may send without racing on the connection.
type ClientHandler struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	log  *slog.Logger

	authed bool
}

func newClientHandler(conn *websocket.Conn, log *slog.Logger) *ClientHandler {
	id := uuid.NewString()
	return &ClientHandler{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  log.With("client", id),
	}
}

// ID is the connection's unique identifier, assigned at accept time.
func (c *ClientHandler) ID() string {
	return c.id
}

func (c *ClientHandler) enqueue(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.log.Error("encoding message", "cmd", env.Cmd, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping message", "cmd", env.Cmd)
	}
}

func (c *ClientHandler) sendLoad(doc, text string) {
	data, _ := json.Marshal(loadData{Doc: doc, Text: text})
	c.enqueue(Envelope{Cmd: "load", Data: data})
}

func (c *ClientHandler) sendUpdate(doc string, raw json.RawMessage) {
	c.enqueue(Envelope{Cmd: "update", Doc: doc, Data: raw})
}

func (c *ClientHandler) sendReadonly(ro bool) {
	data, _ := json.Marshal(ro)
	c.enqueue(Envelope{Cmd: "readonly", Data: data})
}

func (c *ClientHandler) sendConfig(conf any) {
	data, err := json.Marshal(conf)
	if err != nil {
		c.log.Error("encoding config", "error", err)
		return
	}
	c.enqueue(Envelope{Cmd: "config", Data: data})
}

func (c *ClientHandler) sendFlash(msg string) {
	data, _ := json.Marshal(msg)
	c.enqueue(Envelope{Cmd: "flash", Data: data})
}

func (c *ClientHandler) sendToken(username, token string) {
	data, _ := json.Marshal(loginData{Username: username, Token: token})
	c.enqueue(Envelope{Cmd: "token", Data: data})
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. It exits when the send channel is closed
// or a write fails.
func (c *ClientHandler) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads envelopes off the connection and hands them to handle
// until the connection drops; malformed messages are logged and skipped.
func (c *ClientHandler) readPump(handle func(*ClientHandler, Envelope)) {
	defer c.conn.Close()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("connection error", "error", err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("malformed message", "error", err)
			continue
		}
		handle(c, env)
	}
}
