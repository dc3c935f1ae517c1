package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	q, err := store.CreateQuestion(ctx, Question{
		Key: "bloating", Section: "symptoms", Text: "How often do you bloat?",
		Kind: KindScale, Scale: &Scale{Min: 1, Max: 10}, OrderIndex: 1, Active: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, q.ID)

	got, err := store.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	byKey, err := store.GetQuestionByKey(ctx, "bloating")
	require.NoError(t, err)
	assert.Equal(t, q.ID, byKey.ID)

	_, err = store.CreateQuestion(ctx, Question{Key: "bloating", Kind: KindText})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	newText := "How often do you feel bloated?"
	updated, err := store.UpdateQuestion(ctx, q.ID, QuestionPatch{Text: &newText})
	require.NoError(t, err)
	assert.Equal(t, newText, updated.Text)
	assert.Equal(t, q.Kind, updated.Kind)

	toggled, err := store.ToggleQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	active, err := store.ListQuestions(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, store.DeleteQuestion(ctx, q.ID))
	_, err = store.GetQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteQuestion(ctx, q.ID), ErrNotFound)
}

func TestListQuestionsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	// Created out of order; listing sorts by order index.
	for _, q := range []Question{
		{Key: "c", Section: "s", Kind: KindText, OrderIndex: 3, Active: true},
		{Key: "a", Section: "s", Kind: KindText, OrderIndex: 1, Active: true},
		{Key: "b", Section: "s", Kind: KindText, OrderIndex: 2, Active: true},
	} {
		_, err := store.CreateQuestion(ctx, q)
		require.NoError(t, err)
	}
	list, err := store.ListQuestions(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Key)
	assert.Equal(t, "b", list[1].Key)
	assert.Equal(t, "c", list[2].Key)
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	p, err := store.CreateProduct(ctx, Product{
		Name: "Daily Probiotic", Category: "probiotics", Price: "$34.99", Active: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	newPrice := "$29.99"
	updated, err := store.UpdateProduct(ctx, p.ID, ProductPatch{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price)
	assert.Equal(t, p.Name, updated.Name)

	inactive := false
	_, err = store.UpdateProduct(ctx, p.ID, ProductPatch{Active: &inactive})
	require.NoError(t, err)
	activeOnly, err := store.ListProducts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, activeOnly)
	all, err := store.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.DeleteProduct(ctx, p.ID))
	_, err = store.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllQuestionsRestartable(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore().(*memoryStore)
	for _, key := range []string{"a", "b", "c"} {
		_, err := store.CreateQuestion(ctx, Question{Key: key, Kind: KindText, Active: true})
		require.NoError(t, err)
	}

	seq := store.AllQuestions()
	var keys []string
	for q := range seq {
		keys = append(keys, q.Key)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	// The sequence restarts from the beginning and supports early exit.
	keys = keys[:0]
	for q := range seq {
		keys = append(keys, q.Key)
		if len(keys) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	created, err := Seed(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultQuestions)+len(DefaultProducts), created)

	again, err := Seed(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestSectionsGroupsAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_, err := Seed(ctx, store)
	require.NoError(t, err)

	sections, err := Sections(ctx, store)
	require.NoError(t, err)
	require.Len(t, sections, len(DefaultSections))
	assert.Equal(t, "symptoms", sections[0].ID)
	require.NotEmpty(t, sections[0].Questions)
	assert.Equal(t, "bloating_frequency", sections[0].Questions[0].Key)

	// Deactivated questions drop out of the questionnaire view.
	q, err := store.GetQuestionByKey(ctx, "bloating_frequency")
	require.NoError(t, err)
	_, err = store.ToggleQuestion(ctx, q.ID)
	require.NoError(t, err)
	sections, err = Sections(ctx, store)
	require.NoError(t, err)
	assert.NotEqual(t, "bloating_frequency", sections[0].Questions[0].Key)
}
