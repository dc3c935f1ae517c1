package catalog

// Kind classifies how a question is answered.
type Kind string

const (
	KindScale  Kind = "scale"  // integer within Scale.Min..Scale.Max
	KindSingle Kind = "single" // one option
	KindMulti  Kind = "multi"  // set of options
	KindText   Kind = "text"   // free text, optional
)

func (k Kind) Valid() bool {
	switch k {
	case KindScale, KindSingle, KindMulti, KindText:
		return true
	}
	return false
}

// Scale describes the numeric range of a scale question and its two
// boundary labels.
type Scale struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	MinLabel string `json:"min_label"`
	MaxLabel string `json:"max_label"`
}

type Question struct {
	ID string `json:"id"`
	// Key is the stable identifier response maps reference; unique within
	// the collection.
	Key        string   `json:"key"`
	Section    string   `json:"section"`
	Text       string   `json:"text"`
	Help       string   `json:"help,omitempty"`
	Kind       Kind     `json:"kind"`
	Options    []string `json:"options,omitempty"`
	Scale      *Scale   `json:"scale,omitempty"`
	OrderIndex int      `json:"order_index"`
	Active     bool     `json:"active"`
}

// HasOption reports whether label is one of the question's options.
func (q Question) HasOption(label string) bool {
	for _, o := range q.Options {
		if o == label {
			return true
		}
	}
	return false
}

type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	AffiliateURL string `json:"affiliate_url"`
	ImageURL     string `json:"image_url,omitempty"`
	Active       bool   `json:"active"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

// SectionInfo carries the presentation metadata of a questionnaire section.
type SectionInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Section is an ordered group of questions as served to the questionnaire.
type Section struct {
	SectionInfo
	Questions []Question `json:"questions"`
}
