package server

import (
	"lasertag/internal/net"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // phones join from any origin on the local network
	},
}

// Connection is one player's websocket.
type Connection struct {
	id    string
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	arena *Arena
	log   *slog.Logger
}

func NewConnection(conn *websocket.Conn, arena *Arena, log *slog.Logger) *Connection {
	id := uuid.New().String()
	return &Connection{
		id:    id,
		conn:  conn,
		send:  make(chan []byte, 256),
		done:  make(chan struct{}),
		arena: arena,
		log:   log.With("conn", id),
	}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) SendEvent(event string, payload any) {
	data, err := net.Encode(event, payload)
	if err != nil {
		c.log.Error("encoding event", "event", event, "err", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.log.Warn("send buffer full", "event", event)
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.arena.Leave(c)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 << 20) // shots may carry a camera frame
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket error", "err", err)
			}
			break
		}

		envs, errs := net.DecodeFrame(frame)
		for _, err := range errs {
			c.log.Debug("dropping malformed frame", "err", err)
		}
		for _, env := range envs {
			c.handle(env)
		}
	}
}

func (c *Connection) handle(env net.Envelope) {
	switch env.Event {
	case net.EventRegisterPlayer:
		msg, err := net.DecodePayload[net.RegisterPlayerMessage](env)
		if err != nil {
			c.log.Debug("bad register", "err", err)
			return
		}
		c.arena.Register(c, msg.Name)

	case net.EventShoot:
		msg, err := net.DecodePayload[net.ShootMessage](env)
		if err != nil {
			c.log.Debug("bad shoot", "err", err)
			return
		}
		c.arena.Shoot(c, msg)

	case net.EventReload:
		c.arena.Reload(c)

	default:
		c.log.Debug("unknown event", "event", env.Event)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Send queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func HandleWebSocket(arena *Arena, log *slog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade error", "err", err)
			return
		}

		c := NewConnection(conn, arena, log)
		arena.Join(c)
		go c.writePump()
		go c.readPump()

		log.Info("client connected", "conn", c.id, "remote", r.RemoteAddr)
	}
}
