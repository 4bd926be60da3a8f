// internal/server/ws.go

package server

import (
	"net/http"

	"github.com/coder/websocket"
)

// Handler builds the HTTP mux for the WebSocket transport: "/" answers a
// plain ping, "/ws" upgrades and speaks the same line protocol as TCP.
// Wiring the logging middleware is left to the caller so tests can mount the
// handlers bare.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.pingHandler)
	mux.HandleFunc("/ws", s.wsHandler)
	return mux
}

func (s *Server) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

// wsHandler upgrades the request and adapts the socket to net.Conn so the
// ordinary session loop can drive it. Each protocol line travels as one text
// message.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	conn := websocket.NetConn(r.Context(), c, websocket.MessageText)
	s.handleConn(conn, "ws")

	c.Close(websocket.StatusNormalClosure, "session ended")
}
