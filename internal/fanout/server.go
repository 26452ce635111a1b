package fanout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/charleschow/arcade-hockey/internal/core/command"
	"github.com/charleschow/arcade-hockey/internal/core/playerid"
	"github.com/charleschow/arcade-hockey/internal/core/progression"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/core/state/store"
	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

const (
	clientSendBuf = 256
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
	maxMessage    = 4096
)

var (
	errSpectator     = errors.New("spectators cannot send input")
	errWrongPlayer   = errors.New("player_id does not match connection")
	errServerAction  = errors.New("action is awarded by the server")
	errUnknownMsg    = errors.New("unknown message type")
	errNoProgression = errors.New("progression disabled")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Codecs a client may request with ?codec=.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type outFrame struct {
	binary bool
	data   []byte
}

type matchClient struct {
	match   *match.MatchContext
	player  string // empty for spectators
	msgpack bool   // snapshots as binary frames
	conn    *websocket.Conn
	send    chan outFrame
	done    chan struct{}
	limiter *rate.Limiter
}

// Server fans out bus events to the WebSocket clients watching each match
// and feeds player input back into the match.
type Server struct {
	sessions *store.SessionStore
	ledger   *progression.Ledger
	launcher *store.Launcher

	inputRate  rate.Limit
	inputBurst int

	mu      sync.Mutex
	clients map[*matchClient]struct{}
}

// Options configures a Server. Ledger may be nil, in which case action
// messages are rejected and player profiles are unavailable.
type Options struct {
	Sessions        *store.SessionStore
	Launcher        *store.Launcher
	Ledger          *progression.Ledger
	InputRatePerSec float64
	InputBurst      int
}

func NewServer(bus *events.Bus, opts Options) *Server {
	s := &Server{
		sessions:   opts.Sessions,
		ledger:     opts.Ledger,
		launcher:   opts.Launcher,
		inputRate:  rate.Limit(opts.InputRatePerSec),
		inputBurst: opts.InputBurst,
		clients:    make(map[*matchClient]struct{}),
	}
	bus.Subscribe(s.forward,
		events.EventSnapshot,
		events.EventPeriodStart,
		events.EventOvertime,
		events.EventFinal,
		events.EventPuckPop,
		events.EventInjury,
		events.EventXP,
	)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// at most once per codec and enqueues it to that match's clients
// (non-blocking).
func (s *Server) forward(evt events.Event) error {
	text, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}
	var packed []byte

	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if c.match.ID != evt.MatchID {
			continue
		}
		frame := outFrame{data: text}
		if c.msgpack && evt.Type == events.EventSnapshot {
			if packed == nil {
				if packed, err = MarshalSnapshotFrame(evt); err != nil {
					telemetry.Warnf("fanout: msgpack error: %v", err)
					return nil
				}
			}
			frame = outFrame{binary: true, data: packed}
		}
		select {
		case c.send <- frame:
			telemetry.Metrics.BroadcastBytes.Add(int64(len(frame.data)))
		default:
			telemetry.Warnf("fanout: dropping %s for slow client match=%s", evt.Type, evt.MatchID)
		}
	}
	return nil
}

// HandleWS is the HTTP handler for WebSocket upgrade requests.
// Players connect with ?match=ID&player=P&team=home; spectators omit
// player and team. Adding codec=msgpack switches snapshots to binary frames.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matchID := q.Get("match")
	if matchID == "" {
		http.Error(w, "missing ?match= query param", http.StatusBadRequest)
		return
	}
	mc, err := s.sessions.Lookup(matchID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	codec := q.Get("codec")
	if codec != "" && codec != CodecJSON && codec != CodecMsgpack {
		http.Error(w, "codec must be json or msgpack", http.StatusBadRequest)
		return
	}

	player := playerid.Normalize(q.Get("player"))
	if player != "" {
		team := sim.Team(q.Get("team"))
		if team != sim.TeamHome && team != sim.TeamAway {
			http.Error(w, "team must be home or away", http.StatusBadRequest)
			return
		}
		if !mc.RegisterPlayer(player, team) {
			http.Error(w, "match is not accepting players", http.StatusConflict)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &matchClient{
		match:   mc,
		player:  player,
		msgpack: codec == CodecMsgpack,
		conn:    conn,
		send:    make(chan outFrame, clientSendBuf),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(s.inputRate, s.inputBurst),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.Spectators.Inc()

	telemetry.Plainf("Fanout: Client Connected [%s] %s", shortID(mc.ID), clientLabel(c))

	go s.writePump(c)
	go s.readPump(c)
}

// ClientCount reports connected clients across all matches.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// writePump drains the client's send channel and writes to the WS connection.
// It owns the client lifecycle: on exit it removes the client from the map
// (so forward never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *matchClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case f := <-c.send:
			kind := websocket.TextMessage
			if f.binary {
				kind = websocket.BinaryMessage
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(kind, f.data); err != nil {
				telemetry.Warnf("fanout: write error match=%s: %v", shortID(c.match.ID), err)
				return
			}
		case <-c.done:
			return
		case <-c.match.Done():
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "match closed"),
				time.Now().Add(writeDeadline))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client input and keeps the connection alive via pongs.
// On exit it signals writePump via c.done (never closes c.send).
func (s *Server) readPump(c *matchClient) {
	defer close(c.done)

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if !c.limiter.Allow() {
			telemetry.Metrics.InputsThrottled.Inc()
			continue
		}
		if err := s.handleMessage(c, data); err != nil {
			telemetry.Metrics.InputsRejected.Inc()
			telemetry.Debugf("fanout: rejected input match=%s %s: %v", shortID(c.match.ID), clientLabel(c), err)
		}
	}
}

func (s *Server) handleMessage(c *matchClient, data []byte) error {
	if c.player == "" {
		return errSpectator
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	switch msg.Type {
	case MsgCommand:
		cmd, err := command.Decode(msg.Command)
		if err != nil {
			return err
		}
		if playerid.Normalize(cmd.PlayerID) != c.player {
			return errWrongPlayer
		}
		if !c.match.SendInput(cmd) {
			return match.ErrClosed
		}
		return nil

	case MsgAction:
		if s.ledger == nil {
			return errNoProgression
		}
		if msg.PlayerID != "" && playerid.Normalize(msg.PlayerID) != c.player {
			return errWrongPlayer
		}
		action, err := sim.ParseAction(msg.Action)
		if err != nil {
			return err
		}
		if action == sim.ActionParticipation || action == sim.ActionResult {
			return errServerAction
		}
		return c.match.WhileLive(func() error {
			tick := c.match.Facade().Snapshot().Tick
			_, err := s.ledger.Award(c.match.ID, c.player, tick, action)
			return err
		})
	}
	return fmt.Errorf("%w: %q", errUnknownMsg, msg.Type)
}

func (s *Server) removeClient(c *matchClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if !ok {
		return
	}
	telemetry.Metrics.Spectators.Dec()
	telemetry.Plainf("Fanout: Client Disconnected [%s] %s", shortID(c.match.ID), clientLabel(c))
}

func clientLabel(c *matchClient) string {
	if c.player == "" {
		return "spectator"
	}
	return "player=" + c.player
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
