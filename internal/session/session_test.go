package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	s, err := store.Create(ctx, "Jess Park", "jess@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.False(t, s.HasPaid)

	require.NoError(t, store.SaveResponses(ctx, s.ID, map[string]any{"bloating": 6}))
	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Responses["bloating"])

	require.NoError(t, store.MarkPaid(ctx, s.ID, "pi_test_1"))
	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPaid)
	assert.Equal(t, "pi_test_1", got.PaymentID)

	require.NoError(t, store.ClearPayment(ctx, s.ID))
	got, _ = store.Get(ctx, s.ID)
	assert.False(t, got.HasPaid)
	assert.Empty(t, got.PaymentID)

	newName := "Jess P."
	updated, err := store.Update(ctx, s.ID, Patch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, s.Email, updated.Email)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, s.ID), ErrNotFound)
}

func TestAssessments(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	s, err := store.Create(ctx, "A", "a@example.com")
	require.NoError(t, err)

	_, err = store.LatestAssessment(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := store.CompleteAssessment(ctx, s.ID, map[string]any{"bloating": 4})
	require.NoError(t, err)
	second, err := store.CompleteAssessment(ctx, s.ID, map[string]any{"bloating": 8})
	require.NoError(t, err)

	latest, err := store.LatestAssessment(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	all, err := store.ListAssessments(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	report := json.RawMessage(`{"gut_health_score":80}`)
	require.NoError(t, store.SaveAssessmentReport(ctx, first.ID, report))
	all, err = store.ListAssessments(ctx, s.ID)
	require.NoError(t, err)
	for _, a := range all {
		if a.ID == first.ID {
			assert.JSONEq(t, string(report), string(a.Report))
		}
	}

	assert.ErrorIs(t, store.SaveAssessmentReport(ctx, "missing", report), ErrNotFound)
	_, err = store.CompleteAssessment(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMirrorRoundtrip(t *testing.T) {
	m, err := NewMirror(t.TempDir())
	require.NoError(t, err)

	_, err = m.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	s := Session{ID: "sess-1", Name: "Jess", Email: "jess@example.com"}
	require.NoError(t, m.SaveIdentity(s))
	require.NoError(t, m.SaveResponses(map[string]any{"bloating": 6}))
	require.NoError(t, m.SavePayment(true, "pi_test_1"))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Name, got.Name)
	assert.Equal(t, float64(6), got.Responses["bloating"])
	assert.True(t, got.HasPaid)
	assert.Equal(t, "pi_test_1", got.PaymentID)

	require.NoError(t, m.Reset())
	_, err = m.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMirrorTolerantOfPartialState(t *testing.T) {
	m, err := NewMirror(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, m.SaveIdentity(Session{ID: "sess-2", Name: "B", Email: "b@example.com"}))
	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "sess-2", got.ID)
	assert.False(t, got.HasPaid)
	assert.Empty(t, got.Responses)
}
