package services

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/SayanChouni/osint/internal/models"
)

// StreamConn is the minimal interface a WebSocket connection must satisfy
// for the ops log stream.
type StreamConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// LogStream fans new search log entries out to connected ops dashboards.
type LogStream struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]StreamConn
}

func NewLogStream() *LogStream {
	return &LogStream{conns: make(map[uuid.UUID]StreamConn)}
}

// Register adds a connection and returns its id for later removal.
func (s *LogStream) Register(conn StreamConn) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
	return id
}

// Unregister removes a connection.
func (s *LogStream) Unregister(id uuid.UUID) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Broadcast sends an entry to every connected dashboard. A connection that
// fails to write is dropped.
func (s *LogStream) Broadcast(entry models.SearchLogEntry) {
	s.mu.RLock()
	targets := make(map[uuid.UUID]StreamConn, len(s.conns))
	for id, conn := range s.conns {
		targets[id] = conn
	}
	s.mu.RUnlock()

	for id, conn := range targets {
		if err := conn.WriteJSON(entry); err != nil {
			log.Printf("log stream write failed, dropping connection %s: %v", id, err)
			conn.Close()
			s.Unregister(id)
		}
	}
}
