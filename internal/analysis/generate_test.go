package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

func TestGenerateDeterministic(t *testing.T) {
	responses := map[string]any{
		"bloating_frequency": 6,
		"stress_level":       4,
		"sleep_quality":      8,
		"diet_type":          "Omnivore",
	}
	a := Generate(responses, catalog.DefaultProducts)
	b := Generate(responses, catalog.DefaultProducts)
	assert.Equal(t, a, b)
}

func TestGenerateEmptyResponses(t *testing.T) {
	r := Generate(map[string]any{}, nil)
	assert.Equal(t, 70, r.Score)
	assert.Equal(t, "Good", r.Label)
}

func TestGenerateScoreAndLabel(t *testing.T) {
	cases := []struct {
		name      string
		responses map[string]any
		score     int
		label     string
	}{
		{"all tens", map[string]any{"bloating_frequency": 10, "stress_level": 10}, 100, "Excellent"},
		{"mixed", map[string]any{"a": 6, "b": 7}, 65, "Good"},
		{"low", map[string]any{"a": 4, "b": 5}, 45, "Fair"},
		{"very low", map[string]any{"a": 2, "b": 3}, 25, "Needs Improvement"},
		{"strings ignored", map[string]any{"a": 8, "diet_type": "Vegan"}, 80, "Excellent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Generate(tc.responses, nil)
			assert.Equal(t, tc.score, r.Score)
			assert.Equal(t, tc.label, r.Label)
		})
	}
}

func TestGenerateCategoryFloors(t *testing.T) {
	r := Generate(map[string]any{"a": 1}, nil) // score 10
	require.Len(t, r.Categories, 3)
	assert.Equal(t, 30, r.Categories[0].Score)
	assert.Equal(t, 25, r.Categories[1].Score)
	assert.Equal(t, 20, r.Categories[2].Score)
	// All three below threshold become priority areas.
	assert.Contains(t, r.PriorityAreas, "Digestive Function")
	assert.Contains(t, r.PriorityAreas, "Microbiome Balance")
	assert.Contains(t, r.PriorityAreas, "Inflammation Markers")
}

func TestGeneratePriorityAreas(t *testing.T) {
	healthy := Generate(map[string]any{"a": 9, "b": 9}, nil)
	assert.Equal(t, []string{"Maintenance & Prevention"}, healthy.PriorityAreas)

	stressed := Generate(map[string]any{"a": 9, "b": 9, "stress_level": 8}, nil)
	assert.Contains(t, stressed.PriorityAreas, "Stress Management")
}

func TestGenerateSupplementPriorityUpgrade(t *testing.T) {
	low := Generate(map[string]any{"a": 3}, nil)
	high := Generate(map[string]any{"a": 9}, nil)

	find := func(r Report) string {
		for _, rec := range r.Recommendations {
			if rec.Category == "Supplements" {
				return rec.Priority
			}
		}
		return ""
	}
	assert.Equal(t, "High", find(low))
	assert.Equal(t, "Medium", find(high))
}

func TestMatchProductsLowScore(t *testing.T) {
	r := Report{Score: 45, PriorityAreas: []string{"Digestive Function"}}
	got := MatchProducts(r, catalog.DefaultProducts)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 6)
	assert.Equal(t, "high", got[0].Priority)

	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s.ID], "duplicate suggestion %s", s.Name)
		seen[s.ID] = true
	}
}

func TestMatchProductsSkipsInactive(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Name: "Active Probiotic", Category: "probiotics", Active: true},
		{ID: "p2", Name: "Retired Probiotic", Category: "probiotics", Active: false},
	}
	got := MatchProducts(Report{Score: 40}, products)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestRenderPDF(t *testing.T) {
	r := Generate(map[string]any{"bloating_frequency": 5, "stress_level": 8}, catalog.DefaultProducts)
	out, err := RenderPDF(r, "Test Visitor")
	require.NoError(t, err)
	assert.True(t, len(out) > 500)
	assert.Equal(t, "%PDF", string(out[:4]))
}
