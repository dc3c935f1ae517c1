package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

const (
	labelExcellent = "Excellent"
	labelGood      = "Good"
	labelFair      = "Fair"
	labelNeedsWork = "Needs Improvement"
)

// defaultMean is assumed when no numeric answers are present, yielding a
// baseline score of 70.
const defaultMean = 7.0

// categorySpec derives a sub-score from the overall score: score-offset,
// never below floor. Findings are reported in this order.
var categorySpecs = []struct {
	name     string
	offset   int
	floor    int
	highDesc string
	lowDesc  string
	highRecs []string
	lowRecs  []string
}{
	{
		name: "Digestive Function", offset: 5, floor: 30,
		highDesc: "Your digestive system is processing meals efficiently with minimal discomfort.",
		lowDesc:  "Your answers point to frequent digestive discomfort that is worth addressing early.",
		highRecs: []string{"Keep meals regular and unhurried", "Continue chewing thoroughly"},
		lowRecs:  []string{"Eat smaller meals more slowly", "Consider a digestive enzyme with larger meals"},
	},
	{
		name: "Microbiome Balance", offset: 10, floor: 25,
		highDesc: "Your diet and habits support a diverse gut microbiome.",
		lowDesc:  "Limited fiber variety and processed foods may be narrowing your microbiome diversity.",
		highRecs: []string{"Maintain fermented foods a few times per week", "Rotate plant foods for diversity"},
		lowRecs:  []string{"Add one fermented food daily", "Work toward 30 different plants per week"},
	},
	{
		name: "Inflammation Markers", offset: 15, floor: 20,
		highDesc: "Few of your responses suggest ongoing gut inflammation.",
		lowDesc:  "Stress, sleep and food sensitivities in your answers can all feed low-grade inflammation.",
		highRecs: []string{"Keep omega-3 rich foods in rotation", "Protect your current sleep routine"},
		lowRecs:  []string{"Trial removing your top suspected trigger food for two weeks", "Build a wind-down routine before bed"},
	},
}

const lowCategoryThreshold = 60

// Generate builds a deterministic report from a response map. Scale answers
// are averaged and scaled to 0-100; everything downstream (labels, category
// findings, recommendations, products, timeline) derives from that score
// and a handful of individual answers.
func Generate(responses map[string]any, products []catalog.Product) Report {
	score := scoreOf(responses)
	label := labelFor(score)

	var categories []CategoryFinding
	var priority []string
	for _, spec := range categorySpecs {
		sub := score - spec.offset
		if sub < spec.floor {
			sub = spec.floor
		}
		cf := CategoryFinding{Name: spec.name, Score: sub}
		if sub >= lowCategoryThreshold {
			cf.Description = spec.highDesc
			cf.Recommendations = spec.highRecs
		} else {
			cf.Description = spec.lowDesc
			cf.Recommendations = spec.lowRecs
			priority = append(priority, spec.name)
		}
		categories = append(categories, cf)
	}
	if n, ok := numericAnswer(responses, "stress_level"); ok && n >= 7 {
		priority = append(priority, "Stress Management")
	}
	if len(priority) == 0 {
		priority = []string{"Maintenance & Prevention"}
	}

	recs := buildRecommendations(score)
	report := Report{
		Score:           score,
		Label:           label,
		Narrative:       narrative(score, label, priority),
		PriorityAreas:   priority,
		Categories:      categories,
		Recommendations: recs,
		Timeline:        buildTimeline(score),
	}
	report.Products = MatchProducts(report, products)
	return report
}

func scoreOf(responses map[string]any) int {
	var sum float64
	var n int
	// Sorted iteration keeps float accumulation identical across runs.
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := toFloat(responses[k]); ok {
			sum += v
			n++
		}
	}
	mean := defaultMean
	if n > 0 {
		mean = sum / float64(n)
	}
	score := int(math.Round(mean * 10))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func labelFor(score int) string {
	switch {
	case score >= 80:
		return labelExcellent
	case score >= 60:
		return labelGood
	case score >= 40:
		return labelFair
	default:
		return labelNeedsWork
	}
}

func narrative(score int, label string, priority []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your overall gut health score is %d out of 100 (%s). ", score, label)
	switch {
	case score >= 80:
		b.WriteString("Your digestive system is in strong shape; the plan below focuses on keeping it that way.")
	case score >= 60:
		b.WriteString("Your gut health is solid with clear room to improve in a few specific areas.")
	case score >= 40:
		b.WriteString("Several of your answers point to an imbalanced gut that would respond well to focused changes over the next 90 days.")
	default:
		b.WriteString("Your responses suggest your gut needs meaningful support; the staged plan below is designed to rebuild from the foundations.")
	}
	fmt.Fprintf(&b, " Priority focus: %s.", strings.Join(priority, ", "))
	return b.String()
}

func buildRecommendations(score int) []Recommendation {
	supplementPriority := "Medium"
	if score < 60 {
		supplementPriority = "High"
	}
	return []Recommendation{
		{
			Category: "Dietary Changes", Title: "Increase fiber diversity",
			Description: "Aim for 25-35g of fiber daily from a rotating mix of vegetables, legumes and whole grains to feed beneficial bacteria.",
			Priority:    "High",
		},
		{
			Category: "Dietary Changes", Title: "Add fermented foods",
			Description: "Include yogurt, kefir, sauerkraut or kimchi most days to deliver live cultures alongside meals.",
			Priority:    "Medium",
		},
		{
			Category: "Lifestyle", Title: "Manage daily stress",
			Description: "Ten minutes of breathing exercises or a short walk after meals lowers the stress signaling that disrupts digestion.",
			Priority:    "High",
		},
		{
			Category: "Lifestyle", Title: "Protect your sleep window",
			Description: "A consistent 7-9 hour sleep schedule lets the gut lining repair overnight.",
			Priority:    "Medium",
		},
		{
			Category: "Supplements", Title: "Targeted supplementation",
			Description: "A multi-strain probiotic and digestive enzyme taken with meals can bridge the gap while dietary changes take hold.",
			Priority:    supplementPriority,
		},
	}
}

func buildTimeline(score int) []TimelinePhase {
	phases := []TimelinePhase{
		{
			Label: "Weeks 1-2: Foundation",
			Actions: []string{
				"Start a daily food and symptom log",
				"Add one fermented food per day",
				"Set a consistent sleep and wake time",
			},
		},
		{
			Label: "Weeks 3-6: Rebuild",
			Actions: []string{
				"Increase fiber gradually to 30g per day",
				"Introduce targeted supplements with meals",
				"Add two 20-minute walks per week after dinner",
			},
		},
		{
			Label: "Weeks 7-12: Consolidate",
			Actions: []string{
				"Reintroduce trial-removed foods one at a time",
				"Review your symptom log for remaining triggers",
				"Retake the assessment to measure your progress",
			},
		},
	}
	if score < 40 {
		phases[0].Actions = append(phases[0].Actions,
			"Remove your single most suspected trigger food")
	}
	return phases
}

func numericAnswer(responses map[string]any, key string) (float64, bool) {
	v, ok := responses[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
