package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/portfolio-desk/backend/internal/config"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/portfolio"
)

const historyLimit = 10

// Service answers assistant queries with an Ark chat model. It satisfies the
// chat service Responder interface.
type Service struct {
	chatModel model.ChatModel
	holdings  portfolio.Store
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new AI service instance
func NewService(ctx context.Context, holdings portfolio.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newService(ctx, chatModel, holdings, cfg)
}

func newService(ctx context.Context, chatModel model.ChatModel, holdings portfolio.Store, cfg config.AIConfig) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		holdings:  holdings,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Respond generates an investment suggestion for query given the transcript.
func (s *Service) Respond(ctx context.Context, history []chat.Message, query string) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	response, err := s.chain.Invoke(ctx, s.buildChainInput(history, query))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

func (s *Service) buildChainInput(history []chat.Message, query string) map[string]any {
	return map[string]any{
		"system":  BuildAdvisorPrompt(s.holdings),
		"history": buildHistoryMessages(history),
		"query":   query,
	}
}

// buildHistoryMessages converts the tail of the transcript, dropping the
// pending query itself since it is passed separately.
func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if n := len(messages); n > 0 && messages[n-1].Sender == chat.SenderUser {
		messages = messages[:n-1]
	}
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderBot:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
