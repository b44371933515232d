package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lasertag/internal/net"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the game server address used when none is configured.
const DefaultEndpoint = "ws://localhost:5000/ws"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

var (
	ErrNotConnected   = errors.New("not connected")
	ErrSendBufferFull = errors.New("send buffer full")
)

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "idle"
	}
}

// Handler receives one inbound event.
type Handler func(env net.Envelope)

// Registrar is anything events can be subscribed on.
type Registrar interface {
	On(event string, h Handler)
	Logger() *slog.Logger
}

// Handle registers fn for event, decoding the payload into T first.
// Malformed payloads are logged and dropped.
func Handle[T any](r Registrar, event string, fn func(T)) {
	r.On(event, func(env net.Envelope) {
		msg, err := net.DecodePayload[T](env)
		if err != nil {
			r.Logger().Warn("dropping malformed event", "event", env.Event, "err", err)
			return
		}
		fn(msg)
	})
}

type Option func(*NetClient)

// WithHandshake sets the message written first on every new connection.
func WithHandshake(event string, payload any) Option {
	return func(c *NetClient) {
		if err := c.SetHandshake(event, payload); err != nil {
			c.log.Error("invalid handshake", "event", event, "err", err)
		}
	}
}

func WithReconnectDelay(min, max time.Duration) Option {
	return func(c *NetClient) {
		c.minDelay, c.maxDelay = min, max
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *NetClient) { c.dialer = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *NetClient) { c.log = l }
}

// NetClient is a persistent connection to one game server. Network I/O runs
// on background goroutines; inbound events are queued and only delivered to
// handlers by Dispatch or Run, so handlers never run concurrently.
type NetClient struct {
	dialer    *websocket.Dialer
	log       *slog.Logger
	handshake []byte
	minDelay  time.Duration
	maxDelay  time.Duration

	mu     sync.Mutex
	state  State
	link   *link
	cancel context.CancelFunc
	done   chan struct{}

	hmu      sync.Mutex
	handlers map[string]Handler

	qmu   sync.Mutex
	queue []net.Envelope
	wake  chan struct{}
}

type link struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func NewNetClient(opts ...Option) *NetClient {
	c := &NetClient{
		dialer:   websocket.DefaultDialer,
		log:      slog.Default(),
		minDelay: 500 * time.Millisecond,
		maxDelay: 10 * time.Second,
		handlers: make(map[string]Handler),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.minDelay <= 0 {
		c.minDelay = 500 * time.Millisecond
	}
	if c.maxDelay < c.minDelay {
		c.maxDelay = c.minDelay
	}
	return c
}

// SetHandshake sets the message written first on every new connection. It
// takes effect from the next connection.
func (c *NetClient) SetHandshake(event string, payload any) error {
	data, err := net.Encode(event, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.handshake = data
	c.mu.Unlock()
	return nil
}

func (c *NetClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts connecting to endpoint. It returns immediately; progress is
// reported through the connect, connect_error and disconnect events. Calling
// it while a connection is active or being established does nothing.
func (c *NetClient) Connect(ctx context.Context, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid endpoint %q: scheme must be ws or wss", endpoint)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateConnecting

	go c.run(runCtx, endpoint, c.done)
	return nil
}

// Disconnect closes the connection and stops reconnecting. It waits for the
// background goroutines to finish.
func (c *NetClient) Disconnect() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Send queues an event for the server. It never blocks: without a live
// connection or with a full buffer the event is dropped.
func (c *NetClient) Send(event string, payload any) error {
	data, err := net.Encode(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	l, state := c.link, c.state
	c.mu.Unlock()
	if state != StateConnected || l == nil {
		return ErrNotConnected
	}

	select {
	case l.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *NetClient) Logger() *slog.Logger { return c.log }

// On sets the handler for an inbound event, replacing any previous one.
func (c *NetClient) On(event string, h Handler) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	if h == nil {
		delete(c.handlers, event)
		return
	}
	c.handlers[event] = h
}

// Dispatch delivers every queued event, in arrival order, on the calling
// goroutine. It returns the number of events taken from the queue.
func (c *NetClient) Dispatch() int {
	c.qmu.Lock()
	pending := c.queue
	c.queue = nil
	c.qmu.Unlock()

	for _, env := range pending {
		c.hmu.Lock()
		h := c.handlers[env.Event]
		c.hmu.Unlock()
		if h == nil {
			c.log.Debug("no handler for event", "event", env.Event)
			continue
		}
		h(env)
	}
	return len(pending)
}

// Run dispatches events as they arrive until ctx is done.
func (c *NetClient) Run(ctx context.Context) error {
	for {
		c.Dispatch()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
		}
	}
}

func (c *NetClient) run(ctx context.Context, endpoint string, done chan struct{}) {
	defer close(done)
	defer c.finish()

	delay := c.minDelay
	for {
		conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("dial failed", "endpoint", endpoint, "err", err, "retry_in", delay)
			c.setState(StateDisconnected)
			c.enqueueLocal(net.EventConnectError, net.ConnectErrorMessage{Message: err.Error()})
			if !sleep(ctx, delay) {
				return
			}
			delay = min(delay*2, c.maxDelay)
			c.setState(StateConnecting)
			continue
		}

		delay = c.minDelay
		l := c.attach(conn)
		c.log.Info("connected", "endpoint", endpoint)

		select {
		case <-l.done:
			c.detach(l)
			c.log.Warn("connection lost", "endpoint", endpoint, "retry_in", delay)
			if !sleep(ctx, delay) {
				return
			}
			c.setState(StateConnecting)

		case <-ctx.Done():
			_ = l.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			l.conn.Close()
			<-l.done
			c.detach(l)
			c.log.Info("disconnected", "endpoint", endpoint)
			return
		}
	}
}

func (c *NetClient) attach(conn *websocket.Conn) *link {
	l := &link{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.mu.Lock()
	// The handshake goes into the buffer before the link is visible to
	// Send, so it is always the first frame on the wire.
	if c.handshake != nil {
		l.send <- c.handshake
	}
	c.link = l
	c.state = StateConnected
	c.mu.Unlock()

	c.enqueueLocal(net.EventConnect, nil)

	go c.readPump(l)
	go c.writePump(l)
	return l
}

func (c *NetClient) detach(l *link) {
	c.mu.Lock()
	if c.link != l {
		c.mu.Unlock()
		return
	}
	c.link = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	c.enqueueLocal(net.EventDisconnect, nil)
}

func (c *NetClient) finish() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
	c.state = StateDisconnected
	c.mu.Unlock()
}

func (c *NetClient) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *NetClient) readPump(l *link) {
	defer close(l.done)
	defer l.conn.Close()

	l.conn.SetReadLimit(maxMessageSize)
	l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		l.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "err", err)
			}
			return
		}

		envs, errs := net.DecodeFrame(frame)
		for _, err := range errs {
			c.log.Warn("dropping malformed frame", "err", err)
		}
		for _, env := range envs {
			switch env.Event {
			case net.EventConnect, net.EventDisconnect, net.EventConnectError:
				c.log.Debug("ignoring reserved event from server", "event", env.Event)
				continue
			}
			c.enqueue(env)
		}
	}
}

func (c *NetClient) writePump(l *link) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		l.conn.Close()
	}()

	for {
		select {
		case message := <-l.send:
			l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn("write error", "err", err)
				return
			}

		case <-ticker.C:
			l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-l.done:
			return
		}
	}
}

func (c *NetClient) enqueue(env net.Envelope) {
	c.qmu.Lock()
	c.queue = append(c.queue, env)
	c.qmu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *NetClient) enqueueLocal(event string, payload any) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("encoding local event", "event", event, "err", err)
		return
	}
	c.enqueue(net.Envelope{Event: event, Data: data})
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
