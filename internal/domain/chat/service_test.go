package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	"github.com/Lalithx4/agroai/internal/infra/kvstore"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

type stubRemoteChat struct {
	lastReq agroapi.ChatRequest
	resp    agroapi.ChatResponse
	err     error
}

func (s *stubRemoteChat) ChatWithPlant(_ context.Context, req agroapi.ChatRequest) (agroapi.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return agroapi.ChatResponse{}, s.err
	}
	return s.resp, nil
}

func newTestService(t *testing.T, remote *stubRemoteChat) (*Service, *cache.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := cache.NewKV(kvstore.NewMemoryStore(), "agroai_", logger)
	cacheSvc := cache.NewService(cache.Config{
		WeatherTTL:     15 * time.Minute,
		ScanHistoryCap: 50,
		ChatHistoryCap: 100,
		CoordPrecision: 2,
	}, kv, logger)
	return NewService(Config{Language: "en"}, remote, cacheSvc, logger), cacheSvc
}

func TestSendRecordsBothSidesOfTheConversation(t *testing.T) {
	remote := &stubRemoteChat{resp: agroapi.ChatResponse{
		Response: "I could use some water!",
		Emotion:  "thirsty",
		Tip:      "Water early in the morning.",
	}}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	reply, err := svc.Send(ctx, Request{Message: "How are you feeling today?"})
	require.NoError(t, err)
	require.Equal(t, "I could use some water!", reply.Message.Text)
	require.Equal(t, cache.SenderPlant, reply.Message.Sender)
	require.Equal(t, "thirsty", reply.Emotion)
	require.Equal(t, "Water early in the morning.", reply.Tip)

	require.Equal(t, "en", remote.lastReq.Language)

	history := svc.History(ctx, 0)
	require.Len(t, history, 2)
	require.Equal(t, cache.SenderUser, history[0].Sender)
	require.Equal(t, "How are you feeling today?", history[0].Text)
	require.Equal(t, cache.SenderPlant, history[1].Sender)
}

func TestSendKeepsUserLineWhenBackendFails(t *testing.T) {
	remote := &stubRemoteChat{err: apperrors.Wrap(apperrors.CodeNetworkUnavailable, "backend unreachable", nil)}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	_, err := svc.Send(ctx, Request{Message: "Are you okay?"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNetworkUnavailable))

	history := svc.History(ctx, 0)
	require.Len(t, history, 1)
	require.Equal(t, cache.SenderUser, history[0].Sender)
	require.Equal(t, "Are you okay?", history[0].Text)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	remote := &stubRemoteChat{}
	svc, _ := newTestService(t, remote)

	_, err := svc.Send(context.Background(), Request{Message: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Empty(t, svc.History(context.Background(), 0))
}

func TestSendCarriesLatestDiagnosisAsPersonaContext(t *testing.T) {
	remote := &stubRemoteChat{resp: agroapi.ChatResponse{Response: "ok"}}
	svc, cacheSvc := newTestService(t, remote)
	ctx := context.Background()

	cacheSvc.AddScanToHistory(ctx, cache.ScanRecord{
		PlantType:    "tomato",
		HealthStatus: cache.HealthModerate,
		Diseases:     []cache.Disease{{Name: "Early Blight"}, {Name: "Leaf Spot"}},
	})

	_, err := svc.Send(ctx, Request{Message: "What is wrong with you?"})
	require.NoError(t, err)

	require.Equal(t, "tomato", remote.lastReq.PlantType)
	require.Equal(t, "moderate", remote.lastReq.HealthStatus)
	require.Equal(t, []string{"Early Blight", "Leaf Spot"}, remote.lastReq.Diseases)

	// An explicit plant type in the request overrides scan history.
	_, err = svc.Send(ctx, Request{Message: "And as a chili plant?", PlantType: "chili"})
	require.NoError(t, err)
	require.Equal(t, "chili", remote.lastReq.PlantType)
}

func TestSendWindowsTheTranscript(t *testing.T) {
	remote := &stubRemoteChat{resp: agroapi.ChatResponse{Response: "noted"}}
	svc, cacheSvc := newTestService(t, remote)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		cacheSvc.AppendChatMessage(ctx, cache.ChatMessage{Sender: cache.SenderUser, Text: fmt.Sprintf("question %d", i)})
		cacheSvc.AppendChatMessage(ctx, cache.ChatMessage{Sender: cache.SenderPlant, Text: fmt.Sprintf("answer %d", i)})
	}

	_, err := svc.Send(ctx, Request{Message: "latest question"})
	require.NoError(t, err)

	// Only the last ten lines ride along, oldest first, with mapped roles.
	require.Len(t, remote.lastReq.ConversationHistory, 10)
	require.Equal(t, agroapi.ChatTurn{Role: "user", Content: "question 2"}, remote.lastReq.ConversationHistory[0])
	require.Equal(t, agroapi.ChatTurn{Role: "assistant", Content: "answer 6"}, remote.lastReq.ConversationHistory[9])
}

func TestClearEmptiesTranscript(t *testing.T) {
	remote := &stubRemoteChat{resp: agroapi.ChatResponse{Response: "hello"}}
	svc, _ := newTestService(t, remote)
	ctx := context.Background()

	_, err := svc.Send(ctx, Request{Message: "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, svc.History(ctx, 0))

	svc.Clear(ctx)
	require.Empty(t, svc.History(ctx, 0))
}
