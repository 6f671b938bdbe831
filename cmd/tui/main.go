// portfolio-desk-tui renders the dashboard in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/portfolio-desk/backend/internal/config"
	"github.com/zhouzirui/portfolio-desk/backend/internal/dataset"
	"github.com/zhouzirui/portfolio-desk/backend/internal/service/ai"
	"github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/tui"
)

var (
	replyDelay  time.Duration
	datasetPath string
	logFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portfolio-desk-tui",
		Short: "Terminal investment dashboard",
		Long: `portfolio-desk-tui shows the portfolio tracker, the investment assistant
and the fraud alert listing in the terminal.`,
		RunE: run,
	}

	rootCmd.Flags().DurationVar(&replyDelay, "reply-delay", 0, "Assistant reply latency (defaults to CHAT_REPLY_DELAY or 1.5s)")
	rootCmd.Flags().StringVar(&datasetPath, "dataset", "", "YAML dataset file (defaults to DATASET_FILE or the built-in sample)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of discarding them")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// the alternate screen owns stdout, keep log lines out of it
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cmd.Flags().Changed("reply-delay") {
		if replyDelay < 0 {
			return fmt.Errorf("invalid --reply-delay %s: must not be negative", replyDelay)
		}
		cfg.Chat.ReplyDelay = replyDelay
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Dataset.Path = datasetPath
	}

	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	positions := ds.PortfolioStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chatCfg := chat.Config{
		Greeting:        ds.Greeting,
		Responses:       ds.Responses,
		ReplyDelay:      cfg.Chat.ReplyDelay,
		ClosedRetention: cfg.Chat.SessionRetention,
		MaxSessions:     cfg.Chat.MaxSessions,
	}
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, positions, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
		} else {
			chatCfg.Responder = aiService
		}
	}
	chatService := chat.NewService(chatCfg)
	defer chatService.Shutdown()

	model, err := tui.New(ctx, tui.Deps{
		Positions: positions,
		Chart:     ds.Chart,
		Sites:     ds.FraudStore(),
		Chat:      chatService,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
