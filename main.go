package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"voicechat/pkg/capture"
	"voicechat/pkg/gateway"
	"voicechat/pkg/logger"
	"voicechat/pkg/session"
	"voicechat/pkg/speech"
	"voicechat/pkg/transcript"
	"voicechat/pkg/web"
	"voicechat/pkg/workers"
)

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":8080"`
	ChatServiceURL string        `env:"CHAT_SERVICE_URL,required"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`
	OpenAIToken    string        `env:"OPEN_AI_TOKEN"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	workerGroup, err := setupWorkers()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers() (workers.Group, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	gatewayClient, err := gateway.NewClient(cfg.ChatServiceURL, &http.Client{Timeout: cfg.HTTPTimeout})
	if err != nil {
		return nil, fmt.Errorf("creating gateway client: %w", err)
	}

	factory := func(conn *web.Conn) (web.SessionController, web.CaptureController) {
		var speaker session.Speaker = conn
		if cfg.OpenAIToken != "" {
			if ttsSpeaker, err := speech.NewOpenAISpeaker(cfg.OpenAIToken, conn); err == nil {
				speaker = ttsSpeaker
			}
		}

		renderer := transcript.NewRenderer(conn)
		manager := session.NewManager(gatewayClient, renderer, conn, conn, conn, conn, speaker)
		controller := capture.NewController(conn, manager, conn, conn)

		return manager, controller
	}

	var worker workers.Worker
	var workerGroup workers.Group

	if worker, err = workers.NewWebServer(cfg.ListenAddr, web.NewServer(factory)); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, err
	}

	return workerGroup, nil
}
