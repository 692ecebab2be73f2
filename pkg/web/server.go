package web

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voicechat/pkg/logger"
)

// ControllerFactory builds the per-page controllers around a fresh
// connection. One session manager and one capture controller exist per
// page; their lifetime is the connection's.
type ControllerFactory func(conn *Conn) (SessionController, CaptureController)

type Server struct {
	factory  ControllerFactory
	upgrader websocket.Upgrader
}

func NewServer(factory ControllerFactory) *Server {
	return &Server{
		factory: factory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Upgrading page connection failed", logger.Err(err))
		return
	}
	defer ws.Close()

	ctx := logger.ContextWithConnID(r.Context(), uuid.NewString()[:8])
	slog.InfoContext(ctx, "Page connected", "remote", ws.RemoteAddr().String())
	defer slog.InfoContext(ctx, "Page disconnected")

	conn := NewConn(ws)
	sessionCtl, captureCtl := s.factory(conn)

	sessionCtl.Initialize(ctx)

	conn.Run(ctx, NewRouter(sessionCtl, captureCtl))
}
