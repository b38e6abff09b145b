package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/SayanChouni/osint/internal/services"
	"github.com/SayanChouni/osint/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Ops dashboards connect from anywhere; auth is the password check below.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LogStreamHandler upgrades ops dashboard connections and registers them on
// the live search-log stream. Requires the ops password as a bearer token;
// disabled entirely when no hash is configured.
type LogStreamHandler struct {
	stream   *services.LogStream
	passHash string
}

func NewLogStreamHandler(stream *services.LogStream, passHash string) *LogStreamHandler {
	return &LogStreamHandler{stream: stream, passHash: passHash}
}

func (h *LogStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.passHash == "" {
		http.Error(w, "log stream disabled", http.StatusNotFound)
		return
	}

	password := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if password == "" {
		password = r.URL.Query().Get("password")
	}
	ok, err := utils.VerifyPassword(password, h.passHash)
	if err != nil || !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("log stream upgrade failed: %v", err)
		return
	}

	id := h.stream.Register(conn)
	log.Printf("ops dashboard connected: %s", id)

	// Read loop exists only to notice the peer going away.
	go func() {
		defer func() {
			h.stream.Unregister(id)
			conn.Close()
			log.Printf("ops dashboard disconnected: %s", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
