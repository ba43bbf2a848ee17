package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/logger"
	"github.com/lixenwraith/holdout/parameter"
	"github.com/lixenwraith/holdout/status"
)

// ErrHubClosed is returned by Broadcast after Close
var ErrHubClosed = errors.New("feed hub closed")

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshot frames out to websocket subscribers
// Broadcast never blocks the simulation: a subscriber with a full queue misses the frame
type Hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	last   []byte
	closed bool

	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	log          logrus.FieldLogger

	statSubscribers *atomic.Int64
	statDropped     *atomic.Int64
	statFrames      *atomic.Int64
}

// NewHub creates a hub; reg and log may be nil
func NewHub(reg *status.Registry, log logrus.FieldLogger) *Hub {
	if reg == nil {
		reg = status.NewRegistry()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		subs: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout:    parameter.FeedWriteTimeout,
		log:             log,
		statSubscribers: reg.Counter("feed.subscribers"),
		statDropped:     reg.Counter("feed.dropped"),
		statFrames:      reg.Counter("feed.frames"),
	}
}

// Broadcast encodes s once and queues it for every subscriber
func (h *Hub) Broadcast(s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.last = data
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.statDropped.Add(1)
		}
	}
	h.statFrames.Add(1)
	return nil
}

// Subscribers returns the number of connected subscribers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams frames until the peer leaves
// The latest frame, if any, is sent immediately on connect
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	sub := &subscriber{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, parameter.FeedSendBuffer),
	}
	log := h.log.WithFields(logrus.Fields{"subscriber": sub.id, "remote": r.RemoteAddr})
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	if h.last != nil {
		sub.send <- h.last
	}
	h.subs[sub] = struct{}{}
	h.statSubscribers.Store(int64(len(h.subs)))
	h.mu.Unlock()

	log.Info("Feed subscriber connected")
	go h.writeLoop(sub, log)

	// Inbound messages are ignored; the read loop only detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unsubscribe(sub)
	log.Info("Feed subscriber left")
}

func (h *Hub) writeLoop(sub *subscriber, log logrus.FieldLogger) {
	defer sub.conn.Close()
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.WithError(err).Debug("Feed write failed")
			return
		}
	}
	sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.send)
	h.statSubscribers.Store(int64(len(h.subs)))
}

// Close disconnects every subscriber and rejects further broadcasts
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.statSubscribers.Store(0)
}

// Routes mounts the feed endpoints: /ws, /schema and /healthz
func Routes(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.Handle("/schema", SchemaHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}
