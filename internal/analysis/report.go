package analysis

// Report is the full gut-health analysis for one completed assessment.
// Identical response maps must produce byte-identical reports, so the
// struct deliberately carries no timestamps or random identifiers.
type Report struct {
	Score           int                 `json:"gut_health_score"`
	Label           string              `json:"label"`
	Narrative       string              `json:"analysis"`
	PriorityAreas   []string            `json:"priority_areas"`
	Categories      []CategoryFinding   `json:"categories"`
	Recommendations []Recommendation    `json:"recommendations"`
	Products        []ProductSuggestion `json:"products"`
	Timeline        []TimelinePhase     `json:"timeline"`
}

// CategoryFinding scores one sub-area of gut health.
type CategoryFinding struct {
	Name            string   `json:"name"`
	Score           int      `json:"score"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

type Recommendation struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// ProductSuggestion is a catalog product matched against the report.
type ProductSuggestion struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	AffiliateURL string `json:"affiliate_url,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Priority     string `json:"priority"`
	MatchReason  string `json:"match_reason"`
}

type TimelinePhase struct {
	Label   string   `json:"label"`
	Actions []string `json:"actions"`
}
