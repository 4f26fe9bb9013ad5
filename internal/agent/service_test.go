package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/intent"
	"github.com/ashureev/skinmatch/internal/metrics"
	"github.com/ashureev/skinmatch/internal/session"
)

type failingProcessor struct{ err error }

func (p failingProcessor) ProcessTurn(context.Context, *domain.Session, string) (Turn, error) {
	return Turn{}, p.err
}

func newTestService(opts ...ServiceOption) *Service {
	return NewService(newTestEngine(), session.NewStore(testCatalog()), opts...)
}

func TestChatCreatesAndReusesSession(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	first, err := svc.Chat(context.Background(), ChatRequest{Message: "serum buat kulit berminyak"})
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, intent.Recommend, first.Intent)

	second, err := svc.Chat(context.Background(), ChatRequest{SessionID: first.SessionID, Message: "yang lain"})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, intent.MoreRecommend, second.Intent)

	state, ok := svc.State(first.SessionID)
	require.True(t, ok)
	assert.Equal(t, "serum", state.Category)
	assert.Equal(t, []string{"berminyak"}, state.SkinType)
	assert.Equal(t, "yang lain", state.LastRawInput)
}

func TestChatWrapsProcessorErrors(t *testing.T) {
	t.Parallel()

	svc := NewService(failingProcessor{err: ErrNotInitialized}, session.NewStore(testCatalog()))
	_, err := svc.Chat(context.Background(), ChatRequest{SessionID: "abc", Message: "halo"})
	require.ErrorIs(t, err, ErrNotInitialized)
	assert.Contains(t, err.Error(), "chat session abc")

	boom := errors.New("boom")
	svc = NewService(failingProcessor{err: boom}, session.NewStore(testCatalog()))
	_, err = svc.Chat(context.Background(), ChatRequest{SessionID: "abc", Message: "halo"})
	require.ErrorIs(t, err, boom)
}

func TestResetAndStateUnknownSession(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	assert.False(t, svc.Reset("missing"))
	_, ok := svc.State("missing")
	assert.False(t, ok)

	_, err := svc.Chat(context.Background(), ChatRequest{SessionID: "known", Message: "serum buat kulit berminyak"})
	require.NoError(t, err)
	assert.True(t, svc.Reset("known"))

	state, ok := svc.State("known")
	require.True(t, ok)
	assert.Empty(t, state.Category)
	assert.Empty(t, state.SkinType)
}

func TestChatRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	svc := newTestService(WithMetrics(metrics.New(reg)))

	_, err := svc.Chat(context.Background(), ChatRequest{SessionID: "m1", Message: "urutan skincare pagi"})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), ChatRequest{SessionID: "m2", Message: "halo"})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	series := make(map[string]int)
	for _, mf := range families {
		series[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, 2, series["skinmatch_turns_total"], "one series per intent")
	assert.Equal(t, 1, series["skinmatch_sessions_active"])
}
