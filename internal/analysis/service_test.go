package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

func seededCatalog(t *testing.T) catalog.Store {
	t.Helper()
	store := catalog.NewInMemoryStore()
	_, err := catalog.Seed(context.Background(), store)
	require.NoError(t, err)
	return store
}

func TestAnalyzeRequiresPayment(t *testing.T) {
	svc, err := NewService(nil, seededCatalog(t), 8, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), "u1", map[string]any{"a": 5}, false)
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestAnalyzeLocalAndMemoized(t *testing.T) {
	svc, err := NewService(nil, seededCatalog(t), 8, 0, zap.NewNop())
	require.NoError(t, err)

	responses := map[string]any{"bloating_frequency": 6, "stress_level": 8}
	first, err := svc.Analyze(context.Background(), "u1", responses, true)
	require.NoError(t, err)
	assert.Equal(t, 70, first.Score)
	assert.NotEmpty(t, first.Products)

	again, err := svc.Analyze(context.Background(), "u1", responses, true)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// An edited answer misses the cache and changes the score.
	responses["bloating_frequency"] = 2
	edited, err := svc.Analyze(context.Background(), "u1", responses, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.Score, edited.Score)
}

func TestAnalyzeRemotePreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/analyze", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"gut_health_score":88,"label":"Excellent","analysis":"remote"}`))
	}))
	defer srv.Close()

	svc, err := NewService(NewRemoteAnalyzer(srv.URL), seededCatalog(t), 8, 0, zap.NewNop())
	require.NoError(t, err)

	report, err := svc.Analyze(context.Background(), "u1", map[string]any{"a": 3}, true)
	require.NoError(t, err)
	assert.Equal(t, 88, report.Score)
	assert.Equal(t, "remote", report.Narrative)
}

func TestAnalyzeFallsBackWhenRemoteFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc, err := NewService(NewRemoteAnalyzer(srv.URL), seededCatalog(t), 8, 0, zap.NewNop())
	require.NoError(t, err)

	report, err := svc.Analyze(context.Background(), "u1", map[string]any{"a": 9}, true)
	require.NoError(t, err)
	assert.Equal(t, 90, report.Score)
}

func TestAnalyzeHonorsCancellation(t *testing.T) {
	svc, err := NewService(nil, seededCatalog(t), 8, time.Hour, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Analyze(ctx, "u1", map[string]any{"a": 5}, true)
	assert.ErrorIs(t, err, context.Canceled)
}
