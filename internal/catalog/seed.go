package catalog

import "context"

// DefaultSections is the built-in questionnaire layout, in presentation order.
var DefaultSections = []SectionInfo{
	{ID: "symptoms", Title: "Digestive Symptoms", Description: "Tell us about your digestive health"},
	{ID: "diet", Title: "Dietary Patterns", Description: "Share your eating habits and preferences"},
	{ID: "lifestyle", Title: "Lifestyle Factors", Description: "How do you live and manage stress?"},
	{ID: "stool", Title: "Bowel Health", Description: "Important indicators of gut health"},
	{ID: "goals", Title: "Health Goals", Description: "What do you want to achieve?"},
}

func scale01(minLabel, maxLabel string) *Scale {
	return &Scale{Min: 0, Max: 10, MinLabel: minLabel, MaxLabel: maxLabel}
}

// DefaultQuestions is the built-in assessment catalog.
var DefaultQuestions = []Question{
	{Key: "bloating_frequency", Section: "symptoms", Kind: KindScale, OrderIndex: 1, Active: true,
		Text:  "How often do you experience bloating?",
		Help:  "Bloating can indicate digestive imbalances",
		Scale: scale01("Never", "Daily")},
	{Key: "digestive_discomfort", Section: "symptoms", Kind: KindScale, OrderIndex: 2, Active: true,
		Text:  "Rate your overall digestive discomfort",
		Help:  "Consider pain, cramping, and general unease",
		Scale: scale01("No discomfort", "Severe discomfort")},
	{Key: "energy_after_meals", Section: "symptoms", Kind: KindScale, OrderIndex: 3, Active: true,
		Text:  "How is your energy level after eating?",
		Help:  "Post-meal energy can indicate digestive efficiency",
		Scale: scale01("Very tired", "Very energized")},
	{Key: "food_sensitivities", Section: "symptoms", Kind: KindMulti, OrderIndex: 4, Active: true,
		Text: "Do you have any known food sensitivities?",
		Help: "Select all that apply",
		Options: []string{"Dairy/Lactose", "Gluten", "Nuts", "Shellfish", "Eggs", "Soy",
			"FODMAPs", "Spicy foods", "None that I know of"}},

	{Key: "diet_type", Section: "diet", Kind: KindSingle, OrderIndex: 5, Active: true,
		Text: "Which best describes your diet?",
		Help: "Your dietary pattern affects gut microbiome",
		Options: []string{"Standard Western Diet", "Mediterranean", "Vegetarian", "Vegan",
			"Keto/Low-carb", "Paleo", "Intermittent Fasting", "Other"}},
	{Key: "fiber_intake", Section: "diet", Kind: KindScale, OrderIndex: 6, Active: true,
		Text:  "How much fiber do you consume daily?",
		Help:  "Fiber feeds beneficial gut bacteria",
		Scale: scale01("Very little", "Very high")},
	{Key: "processed_foods", Section: "diet", Kind: KindScale, OrderIndex: 7, Active: true,
		Text:  "How often do you eat processed foods?",
		Help:  "Processed foods can disrupt gut health",
		Scale: scale01("Never", "Most meals")},
	{Key: "meal_timing", Section: "diet", Kind: KindSingle, OrderIndex: 8, Active: true,
		Text: "How regular are your meal times?",
		Help: "Consistent timing supports digestive rhythm",
		Options: []string{"Very regular - same times daily", "Mostly regular with some variation",
			"Somewhat irregular", "Very irregular - eat when convenient"}},

	{Key: "stress_level", Section: "lifestyle", Kind: KindScale, OrderIndex: 9, Active: true,
		Text:  "What is your typical stress level?",
		Help:  "Stress significantly impacts gut health",
		Scale: scale01("Very relaxed", "Very stressed")},
	{Key: "sleep_quality", Section: "lifestyle", Kind: KindScale, OrderIndex: 10, Active: true,
		Text:  "How would you rate your sleep quality?",
		Help:  "Sleep affects gut microbiome balance",
		Scale: scale01("Very poor", "Excellent")},
	{Key: "exercise_frequency", Section: "lifestyle", Kind: KindSingle, OrderIndex: 11, Active: true,
		Text: "How often do you exercise?",
		Help: "Physical activity promotes gut health",
		Options: []string{"Daily", "4-6 times per week", "2-3 times per week", "Once per week",
			"Rarely or never"}},
	{Key: "water_intake", Section: "lifestyle", Kind: KindScale, OrderIndex: 12, Active: true,
		Text:  "How much water do you drink daily?",
		Help:  "Hydration is crucial for digestive health",
		Scale: scale01("Very little", "8+ glasses")},

	{Key: "bowel_frequency", Section: "stool", Kind: KindSingle, OrderIndex: 13, Active: true,
		Text: "How often do you have bowel movements?",
		Help: "Frequency indicates digestive transit time",
		Options: []string{"Multiple times per day", "Once per day", "Every other day",
			"2-3 times per week", "Less than twice per week"}},
	{Key: "stool_consistency", Section: "stool", Kind: KindSingle, OrderIndex: 14, Active: true,
		Text: "What best describes your typical stool consistency?",
		Help: "Based on the Bristol Stool Chart",
		Options: []string{"Type 1: Hard lumps (constipated)", "Type 2: Lumpy sausage (slightly constipated)",
			"Type 3: Sausage with cracks (normal)", "Type 4: Smooth sausage (ideal)",
			"Type 5: Soft blobs (lacking fiber)", "Type 6: Mushy consistency (mild diarrhea)",
			"Type 7: Liquid consistency (diarrhea)"}},
	{Key: "bowel_urgency", Section: "stool", Kind: KindScale, OrderIndex: 15, Active: true,
		Text:  "Do you experience urgency with bowel movements?",
		Help:  "Urgency can indicate inflammation or sensitivity",
		Scale: scale01("Never urgent", "Always urgent")},

	{Key: "primary_goals", Section: "goals", Kind: KindMulti, OrderIndex: 16, Active: true,
		Text: "What are your primary health goals?",
		Help: "Select all that are important to you",
		Options: []string{"Reduce bloating and gas", "Improve energy levels", "Better mood and mental clarity",
			"Weight management", "Reduce food sensitivities", "Improve immune function",
			"Better sleep quality", "Reduce inflammation", "Overall wellness optimization"}},
	{Key: "supplement_experience", Section: "goals", Kind: KindSingle, OrderIndex: 17, Active: true,
		Text: "What is your experience with gut health supplements?",
		Help: "This helps us tailor recommendations",
		Options: []string{"Never tried any", "Tried a few with mixed results", "Currently taking some",
			"Extensive experience", "Prefer natural approaches only"}},
	{Key: "commitment_level", Section: "goals", Kind: KindScale, OrderIndex: 18, Active: true,
		Text:  "How committed are you to making changes?",
		Help:  "Honest assessment helps create realistic plans",
		Scale: scale01("Not very committed", "Extremely committed")},
	{Key: "additional_info", Section: "goals", Kind: KindText, OrderIndex: 19, Active: true,
		Text: "Any additional information about your gut health?",
		Help: "Share anything else that might be relevant (optional)"},
}

// DefaultProducts is the starter affiliate catalog.
var DefaultProducts = []Product{
	{Name: "Daily Probiotic 50B", Category: "probiotics", Price: "$34.99", Active: true,
		Description:  "Broad-spectrum probiotic with 12 strains for daily microbiome support.",
		AffiliateURL: "https://example.com/products/daily-probiotic-50b"},
	{Name: "Digestive Enzyme Complex", Category: "enzymes", Price: "$24.99", Active: true,
		Description:  "Full-spectrum enzymes taken with meals to ease bloating and discomfort.",
		AffiliateURL: "https://example.com/products/digestive-enzyme-complex"},
	{Name: "Organic Psyllium Fiber", Category: "fiber", Price: "$18.99", Active: true,
		Description:  "Gentle soluble fiber to support regularity and feed beneficial bacteria.",
		AffiliateURL: "https://example.com/products/organic-psyllium-fiber"},
	{Name: "L-Glutamine Powder", Category: "supplements", Price: "$27.99", Active: true,
		Description:  "Supports the integrity of the intestinal lining.",
		AffiliateURL: "https://example.com/products/l-glutamine-powder"},
	{Name: "Calming Herbal Tea Blend", Category: "herbal", Price: "$14.99", Active: true,
		Description:  "Chamomile, peppermint and ginger blend for stress-related digestive upset.",
		AffiliateURL: "https://example.com/products/calming-herbal-tea"},
	{Name: "Magnesium Glycinate", Category: "supplements", Price: "$21.99", Active: true,
		Description:  "Highly absorbable magnesium supporting sleep quality and motility.",
		AffiliateURL: "https://example.com/products/magnesium-glycinate"},
}

// Seed inserts any default question or product that is not already present.
// Questions are matched by key, products by name. Returns how many records
// were created.
func Seed(ctx context.Context, store Store) (int, error) {
	created := 0
	for _, q := range DefaultQuestions {
		if _, err := store.GetQuestionByKey(ctx, q.Key); err == nil {
			continue
		}
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			return created, err
		}
		created++
	}
	existing, err := store.ListProducts(ctx, false)
	if err != nil {
		return created, err
	}
	byName := make(map[string]bool, len(existing))
	for _, p := range existing {
		byName[p.Name] = true
	}
	for _, p := range DefaultProducts {
		if byName[p.Name] {
			continue
		}
		if _, err := store.CreateProduct(ctx, p); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Sections assembles the active catalog into ordered sections. Sections keep
// the default layout order; questions keep their order index. Unknown
// sections (added through the admin panel) are appended after the defaults.
func Sections(ctx context.Context, store QuestionStore) ([]Section, error) {
	questions, err := store.ListQuestions(ctx, true)
	if err != nil {
		return nil, err
	}
	bySection := map[string][]Question{}
	var extraOrder []string
	known := map[string]bool{}
	for _, s := range DefaultSections {
		known[s.ID] = true
	}
	for _, q := range questions {
		if _, seen := bySection[q.Section]; !seen && !known[q.Section] {
			extraOrder = append(extraOrder, q.Section)
		}
		bySection[q.Section] = append(bySection[q.Section], q)
	}

	var out []Section
	for _, info := range DefaultSections {
		qs := bySection[info.ID]
		if len(qs) == 0 {
			continue
		}
		out = append(out, Section{SectionInfo: info, Questions: qs})
	}
	for _, id := range extraOrder {
		out = append(out, Section{
			SectionInfo: SectionInfo{ID: id, Title: id},
			Questions:   bySection[id],
		})
	}
	return out, nil
}
