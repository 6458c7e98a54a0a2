package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/ledstudio/internal/diagnostics"
	"github.com/coreman2200/ledstudio/internal/live"
	"github.com/coreman2200/ledstudio/internal/scene"
)

const writeWait = 200 * time.Millisecond

// Queued frames beyond frameBacklog replace the oldest one. Diagnostics
// beyond diagBacklog are dropped; Report has already logged them.
const (
	frameBacklog = 2
	diagBacklog  = 32
)

// FrameSetter takes live frames. studio.Player implements it.
type FrameSetter interface {
	SetFrame(f scene.Frame) error
}

// Amper reports the estimated current of the last frame.
type Amper interface {
	Amps() float64
}

// State fans studio output out to websocket clients and takes live input.
// Outbound messages are queued and written by one goroutine, so callers of
// BroadcastFrame and Report never wait on a slow client. Call Close to stop
// it.
type State struct {
	mu sync.Mutex
	// wmu serializes writes to preview clients: the topology message a new
	// client gets and the frames that follow it.
	wmu sync.Mutex

	Count         int
	CurrentDriver string
	Player        FrameSetter

	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	liveClients int
	upgrader    websocket.Upgrader

	frames    chan []byte
	diags     chan []byte
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
}

func NewState(count int, driver string) *State {
	s := &State{
		Count:         count,
		CurrentDriver: driver,
		startTime:     time.Now(),
		clients:       map[*websocket.Conn]bool{},
		diagClients:   map[*websocket.Conn]bool{},
		upgrader:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		frames:        make(chan []byte, frameBacklog),
		diags:         make(chan []byte, diagBacklog),
		done:          make(chan struct{}),
		exited:        make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// Close stops the writer goroutine. Messages still queued are dropped.
func (s *State) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.exited
}

// HandleFramesWS streams preview frames. A topology message is sent first.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.wmu.Lock()
	s.sendTopology(conn)
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.wmu.Unlock()

	go s.drain(conn, s.clients)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()

	go s.drain(conn, s.diagClients)
}

// HandleLiveWS reads set_frame and init_realtime messages from the editor.
func (s *State) HandleLiveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.liveClients++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.liveClients--
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg live.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Report(diag.Diagnostic{Severity: diag.Warn, Code: diag.LiveBadMessage, Summary: "unreadable live message", Detail: err.Error()})
			continue
		}
		s.applyLive(msg)
	}
}

func (s *State) applyLive(msg live.Message) {
	switch msg.Type {
	case live.TypeInitRealtime:
		s.Report(diag.Diagnostic{Severity: diag.Info, Code: diag.LiveInit, Summary: "realtime session started"})
	case live.TypeSetFrame:
		if msg.Frame == nil {
			s.Report(diag.Diagnostic{Severity: diag.Warn, Code: diag.LiveBadMessage, Summary: "set_frame without a frame"})
			return
		}
		if s.Player == nil {
			return
		}
		if err := s.Player.SetFrame(*msg.Frame); err != nil {
			s.Report(diag.Diagnostic{Severity: diag.Err, Code: diag.LiveFrame, Summary: "live frame not shown", Detail: err.Error()})
		}
	default:
		s.Report(diag.Diagnostic{
			Severity: diag.Warn, Code: diag.LiveBadMessage, Summary: "unknown live message type",
			Evidence: map[string]any{"type": msg.Type},
		})
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"frame_id":     s.frameID,
		"uptime_s":     time.Since(s.startTime).Seconds(),
		"count":        s.Count,
		"driver":       s.CurrentDriver,
		"clients":      len(s.clients),
		"live_clients": s.liveClients,
	}
	player := s.Player
	s.mu.Unlock()

	if a, ok := player.(Amper); ok {
		resp["est_amps"] = a.Amps()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// BroadcastFrame queues rgb for every preview client. It is the studio
// player's OnFrame hook and does not block on the network.
func (s *State) BroadcastFrame(rgb []byte) {
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	s.mu.Lock()
	s.frameID++
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: s.frameID, RGB: rgb})
	s.mu.Unlock()

	for {
		select {
		case s.frames <- b:
			return
		case <-s.done:
			return
		default:
		}
		// full: the newest frame wins
		select {
		case <-s.frames:
			log.Debug().Msg("preview backlog full; dropped a frame")
		default:
		}
	}
}

// Report logs d and queues it for diag clients.
func (s *State) Report(d diag.Diagnostic) {
	diag.Log(d)
	b, _ := json.Marshal(d)
	select {
	case s.diags <- b:
	default:
		log.Debug().Str("code", d.Code).Msg("diag backlog full; not pushed")
	}
}

func (s *State) writeLoop() {
	defer close(s.exited)
	for {
		select {
		case <-s.done:
			return
		case b := <-s.frames:
			s.wmu.Lock()
			s.writeAll(s.clients, b)
			s.wmu.Unlock()
		case b := <-s.diags:
			s.writeAll(s.diagClients, b)
		}
	}
}

// writeAll writes b to a snapshot of set, outside mu.
func (s *State) writeAll(set map[*websocket.Conn]bool, b []byte) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("ws write")
		}
	}
}

// sendTopology tells a new preview client what it is looking at. Caller
// holds wmu.
func (s *State) sendTopology(conn *websocket.Conn) {
	s.mu.Lock()
	top := map[string]any{
		"count":  s.Count,
		"driver": s.CurrentDriver,
	}
	s.mu.Unlock()
	b, _ := json.Marshal(top)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

// drain reads until the client goes away, then drops it from set.
func (s *State) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
