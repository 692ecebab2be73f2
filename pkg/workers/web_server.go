package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type webServer struct {
	srv *http.Server
}

// NewWebServer serves the page bridge on addr with the given handler
// mounted at /ws.
func NewWebServer(addr string, bridge http.Handler) (*webServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/ws", bridge)

	return &webServer{
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}, nil
}

func (w *webServer) Name() string { return "web_server" }

func (w *webServer) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", w.Name(), "addr", w.srv.Addr)
	defer slog.Info("Worker stopped", "name", w.Name())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutting down web server", "err", err)
		}
	}()

	if err := w.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving bridge: %w", err)
	}
	return nil
}
