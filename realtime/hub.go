package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/clubday/utils"
)

// Event types
const (
	EventChange        = "change"
	EventTableActivity = "table_activity"
)

// TableActivityFeed is the pseudo table name for derived activity pushes.
const TableActivityFeed = "table_activity"

type Message struct {
	Event    string      `json:"event"`
	Table    string      `json:"table,omitempty"`
	Action   string      `json:"action,omitempty"`
	RecordID uint        `json:"record_id,omitempty"`
	Data     interface{} `json:"data"`

	// SessionID scopes the message to one customer session; zero means
	// staff only.
	SessionID uint `json:"-"`
}

// DefaultWriteWait bounds a single websocket write.
const DefaultWriteWait = 10 * time.Second

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription describes which messages a client receives. An empty Tables
// set means every table. A non-zero SessionID restricts delivery to
// messages scoped to that session.
type Subscription struct {
	Role      string
	Tables    map[string]bool
	SessionID uint
}

func NewSubscription(role string, sessionID uint, tables ...string) Subscription {
	sub := Subscription{Role: role, SessionID: sessionID, Tables: make(map[string]bool)}
	for _, t := range tables {
		if t != "" {
			sub.Tables[t] = true
		}
	}
	return sub
}

func (s Subscription) Accepts(msg Message) bool {
	if len(s.Tables) > 0 && !s.Tables[msg.Table] {
		return false
	}
	if s.SessionID != 0 {
		return msg.SessionID == s.SessionID
	}
	return true
}

// Hub fans change messages out to websocket clients. mutex guards the
// client map; writeMu serializes writers so a connection never sees two
// concurrent writes.
type Hub struct {
	clients map[Conn]Subscription
	mutex   sync.Mutex
	writeMu sync.Mutex

	WriteWait time.Duration
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]Subscription), WriteWait: DefaultWriteWait}
}

func (h *Hub) Register(conn Conn, sub Subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = sub
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish sends msg to every matching client. Each write gets WriteWait to
// finish; clients that fail or time out are dropped.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	targets := make(map[Conn]Subscription)
	for conn, sub := range h.clients {
		if sub.Accepts(msg) {
			targets[conn] = sub
		}
	}
	h.mutex.Unlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for conn, sub := range targets {
		if err := h.write(conn, data); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"role":  sub.Role,
				"event": msg.Event,
			}).Warnf("Dropping websocket client: %v", err)
			h.Unregister(conn)
		}
	}
}

func (h *Hub) write(conn Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.WriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
