package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/analysis"
	"github.com/gutinsight/gutinsight/internal/assessment"
	"github.com/gutinsight/gutinsight/internal/auth"
	"github.com/gutinsight/gutinsight/internal/catalog"
	"github.com/gutinsight/gutinsight/internal/config"
	"github.com/gutinsight/gutinsight/internal/payment"
	"github.com/gutinsight/gutinsight/internal/session"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	log := zap.NewNop()
	catalogStore := catalog.NewInMemoryStore()
	_, err := catalog.Seed(context.Background(), catalogStore)
	require.NoError(t, err)
	sessionStore := session.NewInMemoryStore()
	mirror, err := session.NewMirror(t.TempDir())
	require.NoError(t, err)
	analyzer, err := analysis.NewService(nil, catalogStore, 8, 0, log)
	require.NoError(t, err)

	return &API{
		Cfg: config.Config{
			AdminUser:   "admin",
			AdminPass:   "demo123",
			CORSOrigins: []string{"*"},
		},
		Log:      log,
		Auth:     auth.NewService("test-secret", time.Hour),
		Sessions: sessionStore,
		Catalog:  catalogStore,
		Mirror:   mirror,
		Registry: assessment.NewRegistry(),
		Analyzer: analyzer,
		Payments: payment.NewProcessor(sessionStore, nil, log),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Jess Park", "email": "jess@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestSignupValidation(t *testing.T) {
	h := newTestAPI(t).Router()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionnaireRequiresToken(t *testing.T) {
	h := newTestAPI(t).Router()
	rec := doJSON(t, h, http.MethodGet, "/api/questions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVisitorCannotReachAdmin(t *testing.T) {
	h := newTestAPI(t).Router()
	token := signup(t, h)
	rec := doJSON(t, h, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminLoginAndStats(t *testing.T) {
	h := newTestAPI(t).Router()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "demo123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	rec = doJSON(t, h, http.MethodGet, "/api/admin/stats", out.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats session.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.PaidSessions)
}

func TestFunnelEndToEnd(t *testing.T) {
	a := newTestAPI(t)
	h := a.Router()
	token := signup(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/assessment/start", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Results are locked until the questionnaire is done and paid for.
	rec = doJSON(t, h, http.MethodGet, "/api/analysis", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Answer every active question in catalog order, advancing as we go.
	questions, err := a.Catalog.ListQuestions(context.Background(), true)
	require.NoError(t, err)
	for i, q := range questions {
		switch q.Kind {
		case catalog.KindScale:
			rec = doJSON(t, h, http.MethodPost, "/api/assessment/answer", token,
				map[string]any{"key": q.Key, "value": 6})
		case catalog.KindSingle:
			rec = doJSON(t, h, http.MethodPost, "/api/assessment/answer", token,
				map[string]any{"key": q.Key, "value": q.Options[0]})
		case catalog.KindMulti:
			rec = doJSON(t, h, http.MethodPost, "/api/assessment/toggle", token,
				map[string]any{"key": q.Key, "option": q.Options[0]})
		case catalog.KindText:
			rec = doJSON(t, h, http.MethodPost, "/api/assessment/answer", token,
				map[string]any{"key": q.Key, "value": "nothing else"})
		}
		require.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("question %s: %s", q.Key, rec.Body.String()))

		rec = doJSON(t, h, http.MethodPost, "/api/assessment/advance", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		if i == len(questions)-1 {
			var done struct {
				Done bool `json:"done"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &done))
			assert.True(t, done.Done)
		}
	}

	// Completed but unpaid: the analysis endpoint redirects to payment.
	rec = doJSON(t, h, http.MethodGet, "/api/analysis", token, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	// Declined demo card leaves the gate shut.
	rec = doJSON(t, h, http.MethodPost, "/api/payment/charge", token,
		map[string]string{"card_number": payment.CardDeclined})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/payment/charge", token,
		map[string]string{"card_number": payment.CardSuccess})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/analysis", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 60, report.Score)
	assert.NotEmpty(t, report.Categories)

	rec = doJSON(t, h, http.MethodGet, "/api/report/pdf", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}
