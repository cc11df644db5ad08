package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/util"
)

const eventsChannel = "realtime:events"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type event struct {
	AccountID int         `json:"accountId"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
}

// Hub tracks live websocket sessions per account and fans events out to
// them. Events also go through the cache's pub/sub channel so sessions
// attached to other nodes receive them too.
type Hub struct {
	cache *cache.Cache

	mu    sync.RWMutex
	conns map[int]map[*websocket.Conn]bool
}

// NewHub creates the hub
func NewHub(c *cache.Cache) *Hub {
	return &Hub{
		cache: c,
		conns: make(map[int]map[*websocket.Conn]bool),
	}
}

// Attach upgrades the request and registers the session for accountID
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, accountID int) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.conns[accountID] == nil {
		h.conns[accountID] = make(map[*websocket.Conn]bool)
	}
	h.conns[accountID][conn] = true
	h.mu.Unlock()

	// reader loop only detects close; clients do not send
	go func() {
		defer util.Recover()
		defer h.detach(accountID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (h *Hub) detach(accountID int, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.conns[accountID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, accountID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// EmitToUser pushes an event to every live session of an account. Publish
// failures fall back to local-only delivery; a push is best-effort.
func (h *Hub) EmitToUser(accountID int, eventName string, payload interface{}) {
	ev := event{AccountID: accountID, Event: eventName, Payload: payload}

	raw, err := json.Marshal(ev)
	if err != nil {
		logrus.Warn("unable to marshal realtime event: ", err)
		return
	}

	if err := h.cache.Publish(eventsChannel, string(raw)); err != nil {
		h.deliver(ev)
	}
}

// Run consumes the shared events channel and delivers to local sessions.
// Blocks until the subscription fails.
func (h *Hub) Run() error {
	ch, err := h.cache.Subscribe(eventsChannel)
	if err != nil {
		return err
	}
	for msg := range ch {
		var ev event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logrus.Warn("dropping malformed realtime event: ", err)
			continue
		}
		h.deliver(ev)
	}
	return nil
}

func (h *Hub) deliver(ev event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns[ev.AccountID]))
	for conn := range h.conns[ev.AccountID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	msg := map[string]interface{}{"event": ev.Event, "payload": ev.Payload}
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.detach(ev.AccountID, conn)
		}
	}
}
