package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"idol-career/apps/server/internal/lobby"
	"idol-career/apps/server/internal/session"
	"idol-career/career"
	"idol-career/wire"
)

const (
	readLimit    = 8192
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256

	closeSessionResumed = 4001
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the web client origin once it is deployed
	},
}

// Connection 一个 websocket 连接，独占一个会话
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway
	Session *session.Session
}

// Gateway manages websocket connections.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	owners      map[string]*Connection // sessionID -> 当前持有会话的连接
	nextConnID  uint64
	lobby       *lobby.Lobby
}

func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		owners:      make(map[string]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket upgrades the request and serves the connection until it
// closes. ?session=<id> resumes a detached session.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, resumed, err := g.resolveSession(r.URL.Query().Get("session"))
	if err != nil {
		log.Printf("[Gateway] Create session failed: %v", err)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		if !resumed {
			g.lobby.Remove(sess.ID)
		}
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Gateway: g,
		Session: sess,
	}
	g.connections[c.ID] = c
	prev := g.owners[sess.ID]
	g.owners[sess.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s (session=%s, resumed=%v), total: %d", c.ID, sess.ID, resumed, total)
	if prev != nil {
		prev.evict()
	}
	c.serve(r.Context())
}

func (g *Gateway) resolveSession(id string) (*session.Session, bool, error) {
	if id != "" {
		if s := g.lobby.Get(id); s != nil && !s.IsClosed() {
			return s, true, nil
		}
		log.Printf("[Gateway] Session %s not found, creating a new one", id)
	}
	s, err := g.lobby.Create()
	return s, false, err
}

func (c *Connection) serve(parent context.Context) {
	token := c.Session.Attach(c.enqueue)
	defer func() {
		c.Session.Detach(token)
		c.Gateway.removeConnection(c)
	}()

	eg, ctx := errgroup.WithContext(parent)
	eg.Go(func() error { return c.writePump(ctx) })
	eg.Go(func() error { return c.readPump(ctx, eg) })

	_ = c.Session.SubmitEvent(session.Event{Type: session.EventSnapshot})
	if err := eg.Wait(); err != nil && !isClosing(err) {
		log.Printf("[Gateway] Connection %s ended: %v", c.ID, err)
	}
}

// evict closes a connection whose session was resumed elsewhere. Its
// in-flight commands still finish; it no longer receives frames.
func (c *Connection) evict() {
	log.Printf("[Gateway] Connection %s replaced for session %s", c.ID, c.Session.ID)
	_ = c.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(closeSessionResumed, "session resumed by another connection"),
		time.Now().Add(writeWait),
	)
	_ = c.Conn.Close()
}

// enqueue is the session sink. Frames are dropped when the buffer is full.
func (c *Connection) enqueue(data []byte) {
	select {
	case c.Send <- data:
	default:
		log.Printf("[Gateway] Send buffer full, dropping frame for %s", c.ID)
	}
}

func (c *Connection) readPump(ctx context.Context, eg *errgroup.Group) error {
	c.Conn.SetReadLimit(readLimit)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return errClosing
		}
		if ctx.Err() != nil {
			return nil
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		c.handleMessage(message, eg)
	}
}

func (c *Connection) handleMessage(data []byte, eg *errgroup.Group) {
	cmd, err := wire.UnmarshalCommand(data)
	if err != nil {
		log.Printf("[Gateway] Failed to unmarshal: %v", err)
		c.Session.Notice("invalid_message", "invalid message format")
		return
	}

	ev := session.Event{Action: cmd.Action}
	switch cmd.Type {
	case wire.CmdStart:
		ev.Type = session.EventStart
	case wire.CmdAction:
		ev.Type = session.EventAction
	case wire.CmdAdvance:
		// 剧情生成可能耗时数秒，不阻塞读循环
		ev.Type = session.EventAdvance
		eg.Go(func() error {
			c.submit(cmd, ev)
			return nil
		})
		return
	case wire.CmdRestart:
		ev.Type = session.EventRestart
	case wire.CmdSnapshot:
		ev.Type = session.EventSnapshot
	}
	c.submit(cmd, ev)
}

func (c *Connection) submit(cmd wire.Command, ev session.Event) {
	err := c.Session.SubmitEvent(ev)
	if err == nil || errors.Is(err, session.ErrSessionClosed) {
		return
	}
	log.Printf("[Gateway] Command %s (seq=%d) rejected for session %s: %v", cmd.Type, cmd.Seq, c.Session.ID, err)
	c.Session.Notice(noticeCode(err), err.Error())
}

func (c *Connection) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case message := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return err
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if g.owners[c.Session.ID] == c {
		delete(g.owners, c.Session.ID)
	}
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// ConnectionCount 当前在线连接数
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

var errClosing = errors.New("connection closing")

func isClosing(err error) bool {
	return errors.Is(err, errClosing) || errors.Is(err, context.Canceled)
}

func noticeCode(err error) string {
	switch {
	case errors.Is(err, career.ErrInsufficientStamina):
		return "insufficient_stamina"
	case errors.Is(err, career.ErrNoActionsLeft):
		return "no_actions_left"
	case errors.Is(err, career.ErrActionsRemaining):
		return "actions_remaining"
	case errors.Is(err, career.ErrQuarterInFlight):
		return "quarter_in_flight"
	case errors.Is(err, career.ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, career.ErrNotEnded):
		return "not_ended"
	case errors.Is(err, career.ErrNotPlaying), errors.Is(err, career.ErrGameOver):
		return "not_playing"
	case errors.Is(err, career.ErrUnknownAction):
		return "unknown_action"
	default:
		return "command_failed"
	}
}
