package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// historyWindow bounds how much transcript context travels with each turn.
const historyWindow = 10

// Request is one user turn addressed to the plant persona.
type Request struct {
	Message   string
	PlantType string
	Language  string
}

// Reply is the plant's answer plus the transcript lines recorded for it.
type Reply struct {
	Message cache.ChatMessage
	Emotion string
	Tip     string
}

// RemoteChat is the backend conversation endpoint.
type RemoteChat interface {
	ChatWithPlant(ctx context.Context, req agroapi.ChatRequest) (agroapi.ChatResponse, error)
}

// Config wires runtime defaults for the chat domain.
type Config struct {
	Language string
}

// Service drives the plant persona conversation. Each turn carries the
// latest diagnosis and a window of the transcript so the persona stays
// consistent across sessions.
type Service struct {
	cfg      Config
	remote   RemoteChat
	cacheSvc *cache.Service
	logger   *slog.Logger
}

// NewService builds the chat domain service.
func NewService(cfg Config, remote RemoteChat, cacheSvc *cache.Service, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		remote:   remote,
		cacheSvc: cacheSvc,
		logger:   logger.With("component", "chat.service"),
	}
}

// Send records the user's message, asks the backend for the plant's answer,
// and records that too. The user line persists even when the backend call
// fails so the transcript reflects what was actually said.
func (s *Service) Send(ctx context.Context, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, apperrors.Wrap(apperrors.CodeInvalidInput, "message is empty", nil)
	}
	language := req.Language
	if language == "" {
		language = s.cfg.Language
	}

	plantType, healthStatus, diseases := s.plantContext(ctx, req.PlantType)
	history := s.conversationWindow(ctx)

	s.cacheSvc.AppendChatMessage(ctx, cache.ChatMessage{Sender: cache.SenderUser, Text: message})

	resp, err := s.remote.ChatWithPlant(ctx, agroapi.ChatRequest{
		Message:             message,
		PlantType:           plantType,
		HealthStatus:        healthStatus,
		Diseases:            diseases,
		ConversationHistory: history,
		Language:            language,
	})
	if err != nil {
		return Reply{}, err
	}

	plantMsg := s.cacheSvc.AppendChatMessage(ctx, cache.ChatMessage{Sender: cache.SenderPlant, Text: resp.Response})
	return Reply{Message: plantMsg, Emotion: resp.Emotion, Tip: resp.Tip}, nil
}

// History returns the stored transcript in chronological order.
func (s *Service) History(ctx context.Context, limit int) []cache.ChatMessage {
	return s.cacheSvc.ChatHistory(ctx, limit)
}

// Clear empties the transcript.
func (s *Service) Clear(ctx context.Context) {
	s.cacheSvc.ClearChatHistory(ctx)
}

// plantContext derives the persona's state from the most recent scan. An
// explicit plant type from the request wins over history.
func (s *Service) plantContext(ctx context.Context, requested string) (plantType, healthStatus string, diseases []string) {
	plantType = requested
	healthStatus = string(cache.HealthUnknown)
	scans := s.cacheSvc.ScanHistory(ctx)
	if len(scans) == 0 {
		return plantType, healthStatus, nil
	}
	latest := scans[0]
	if plantType == "" {
		plantType = latest.PlantType
		if plantType == "" {
			plantType = latest.PlantName
		}
	}
	healthStatus = string(latest.HealthStatus)
	for _, d := range latest.Diseases {
		diseases = append(diseases, d.Name)
	}
	return plantType, healthStatus, diseases
}

func (s *Service) conversationWindow(ctx context.Context) []agroapi.ChatTurn {
	msgs := s.cacheSvc.ChatHistory(ctx, 0)
	if len(msgs) > historyWindow {
		msgs = msgs[len(msgs)-historyWindow:]
	}
	turns := make([]agroapi.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Sender == cache.SenderPlant {
			role = "assistant"
		}
		turns = append(turns, agroapi.ChatTurn{Role: role, Content: m.Text})
	}
	return turns
}
