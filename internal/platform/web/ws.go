package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-slider/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message types exchanged over the socket.
const (
	msgClick   = "click"
	msgRestart = "restart"
	msgError   = "error"
)

// clientMessage is sent by the browser.
type clientMessage struct {
	Type string `json:"type"`
	Tile *int   `json:"tile,omitempty"`
	Row  *int   `json:"row,omitempty"`
	Col  *int   `json:"col,omitempty"`
}

// serverMessage is pushed to the browser. Type is a session.EventType or
// "error".
type serverMessage struct {
	Type    string       `json:"type"`
	Session *SessionView `json:"session,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// client is one WebSocket connection attached to a session.
type client struct {
	server  *Server
	conn    *websocket.Conn
	session *session.Session
	sub     *session.Subscription
	replies chan serverMessage
	owned   bool
}

// handleWebSocket attaches a connection to an existing session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.serveSocket(w, r, sess, false)
}

// handleOwnedWebSocket creates a session that lives as long as the
// connection. Closing the socket deletes the session and stops its clock.
func (s *Server) handleOwnedWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Create(session.Options{Player: r.URL.Query().Get("player")})
	s.serveSocket(w, r, sess, true)
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request, sess *session.Session, owned bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session", sess.ID(), "error", err)
		if owned {
			s.manager.Delete(sess.ID())
		}
		return
	}

	c := &client{
		server:  s,
		conn:    conn,
		session: sess,
		sub:     sess.Subscribe(0),
		replies: make(chan serverMessage, 8),
		owned:   owned,
	}
	s.logger.Info("websocket attached", "session", sess.ID(), "owned", owned)

	go c.writePump()
	go c.readPump()
}

// readPump applies browser messages to the session.
func (c *client) readPump() {
	defer func() {
		c.sub.Close()
		c.conn.Close()
		if c.owned {
			c.server.manager.Delete(c.session.ID())
		}
		c.server.logger.Info("websocket detached", "session", c.session.ID())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket error", "session", c.session.ID(), "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *client) handle(msg clientMessage) {
	var err error
	switch msg.Type {
	case msgClick:
		switch {
		case msg.Tile != nil:
			_, err = c.session.Click(*msg.Tile)
		case msg.Row != nil && msg.Col != nil:
			_, err = c.session.ClickCell(*msg.Row, *msg.Col)
		default:
			c.reply(serverMessage{Type: msgError, Error: "click needs tile or row and col"})
			return
		}
	case msgRestart:
		_, err = c.session.Restart()
	default:
		c.reply(serverMessage{Type: msgError, Error: "unknown message type: " + msg.Type})
		return
	}
	if err != nil {
		c.reply(serverMessage{Type: msgError, Error: err.Error()})
	}
}

// reply queues a direct answer, dropping it if the writer is backed up.
func (c *client) reply(msg serverMessage) {
	select {
	case c.replies <- msg:
	default:
	}
}

// writePump is the only writer on the connection. It sends the current
// state first, then every session event.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	view := viewOf(c.session, c.session.State())
	if err := c.write(serverMessage{Type: string(session.EventState), Session: &view}); err != nil {
		return
	}

	for {
		select {
		case evt := <-c.sub.Events():
			view := viewOf(c.session, evt.State)
			if err := c.write(serverMessage{Type: string(evt.Type), Session: &view}); err != nil {
				return
			}

		case msg := <-c.replies:
			if err := c.write(msg); err != nil {
				return
			}

		case <-c.sub.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) write(msg serverMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}
