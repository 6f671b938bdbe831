package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhouzirui/portfolio-desk/backend/internal/config"
	"github.com/zhouzirui/portfolio-desk/backend/internal/dataset"
	"github.com/zhouzirui/portfolio-desk/backend/internal/handler"
	"github.com/zhouzirui/portfolio-desk/backend/internal/service/ai"
	"github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	positions := ds.PortfolioStore()

	chatCfg := chat.Config{
		Greeting:        ds.Greeting,
		Responses:       ds.Responses,
		ReplyDelay:      cfg.Chat.ReplyDelay,
		ClosedRetention: cfg.Chat.SessionRetention,
		MaxSessions:     cfg.Chat.MaxSessions,
	}

	// The canned pool stays the fallback when the model is unavailable
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, positions, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with canned assistant replies")
		} else {
			chatCfg.Responder = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, using canned assistant replies")
	}

	chatService := chat.NewService(chatCfg)
	defer chatService.Shutdown()

	router := handler.NewRouter(handler.Dependencies{
		Positions:      positions,
		Chart:          ds.Chart,
		Sites:          ds.FraudStore(),
		Chat:           chatService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Portfolio Desk backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
