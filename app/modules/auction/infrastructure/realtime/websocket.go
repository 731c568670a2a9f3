package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WebsocketServer upgrades subscribe requests and streams round events.
type WebsocketServer struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebsocketServer creates a WebsocketServer. An empty origin list keeps
// gorilla's same-origin check.
func NewWebsocketServer(hub *Hub, allowedOrigins []string, logger *slog.Logger) *WebsocketServer {
	upgrader := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}
	if len(allowedOrigins) > 0 {
		origins := make(map[string]struct{}, len(allowedOrigins))
		for _, o := range allowedOrigins {
			origins[o] = struct{}{}
		}
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := origins[origin]
			return ok
		}
	}
	return &WebsocketServer{hub: hub, upgrader: upgrader, logger: logger}
}

// Serve streams roundID's events to the connection until either side closes.
// Client frames are read only to observe close and pong.
func (s *WebsocketServer) Serve(w http.ResponseWriter, r *http.Request, roundID string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Websocket upgrade failed", attr.Error(err))
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(roundID)
	defer sub.Close()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber dropped"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
