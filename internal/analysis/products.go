package analysis

import (
	"strings"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

const maxSuggestions = 6

// MatchProducts selects catalog products relevant to a report. Rules fire
// in a fixed order and within each rule products keep catalog order, so
// equal reports always yield the same suggestion list.
func MatchProducts(r Report, products []catalog.Product) []ProductSuggestion {
	var out []ProductSuggestion
	seen := map[string]bool{}

	add := func(categories []string, priority, reason string) {
		for _, p := range products {
			if !p.Active || seen[p.ID] || len(out) >= maxSuggestions {
				continue
			}
			if !containsFold(categories, p.Category) {
				continue
			}
			seen[p.ID] = true
			out = append(out, ProductSuggestion{
				ID:           p.ID,
				Name:         p.Name,
				Category:     p.Category,
				Description:  p.Description,
				Price:        p.Price,
				AffiliateURL: p.AffiliateURL,
				ImageURL:     p.ImageURL,
				Priority:     priority,
				MatchReason:  reason,
			})
		}
	}

	if r.Score < 60 {
		add([]string{"probiotics", "enzymes", "fiber"}, "high",
			"Core support for rebuilding gut function at your current score")
	}
	if hasAreaFold(r.PriorityAreas, "digestive") {
		add([]string{"probiotics", "enzymes"}, "medium",
			"Targets the digestive function issues flagged in your analysis")
	}
	if hasAreaFold(r.PriorityAreas, "stress") {
		add([]string{"supplements", "herbal"}, "medium",
			"Supports the stress management priority in your plan")
	}
	if hasAreaFold(r.PriorityAreas, "microbiome") {
		add([]string{"probiotics", "fiber"}, "medium",
			"Feeds and diversifies your gut microbiome")
	}
	// Everyone gets at least a general maintenance pick.
	if len(out) == 0 {
		add([]string{"probiotics"}, "low", "General gut maintenance")
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func hasAreaFold(areas []string, substr string) bool {
	for _, a := range areas {
		if strings.Contains(strings.ToLower(a), substr) {
			return true
		}
	}
	return false
}
