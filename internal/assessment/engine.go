package assessment

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

var (
	ErrEmptyCatalog = errors.New("question catalog is empty")
	ErrValidation   = errors.New("invalid answer")
	ErrNotAnswered  = errors.New("current question not answered")
)

// Milestones are the progress thresholds celebrated at most once per session.
var Milestones = []int{25, 50, 75, 100}

// PersistFunc receives the full response map after every accepted write.
type PersistFunc func(responses map[string]any)

// Engine walks an ordered section/question catalog one answer at a time.
// It owns the session's response map; persistence happens through the
// injected callback so the engine stays storage-free.
type Engine struct {
	sections []catalog.Section
	byKey    map[string]catalog.Question
	total    int

	sec, idx  int
	done      bool
	responses map[string]any
	reported  map[int]bool
	persist   PersistFunc
}

func NewEngine(sections []catalog.Section, responses map[string]any, persist PersistFunc) *Engine {
	e := &Engine{
		sections:  sections,
		byKey:     map[string]catalog.Question{},
		responses: map[string]any{},
		reported:  map[int]bool{},
		persist:   persist,
	}
	for _, s := range sections {
		for _, q := range s.Questions {
			e.byKey[q.Key] = q
			e.total++
		}
	}
	// Re-adopt only entries that reference catalog questions; stale keys
	// from an edited catalog are dropped.
	for k, v := range responses {
		if _, ok := e.byKey[k]; ok {
			e.responses[k] = v
		}
	}
	// Milestones already crossed by restored responses are not re-reported.
	p := e.Progress()
	for _, m := range Milestones {
		if p >= float64(m) {
			e.reported[m] = true
		}
	}
	return e
}

// Current returns the question under the cursor.
func (e *Engine) Current() (catalog.Question, error) {
	if e.total == 0 {
		return catalog.Question{}, ErrEmptyCatalog
	}
	return e.sections[e.sec].Questions[e.idx], nil
}

// Section returns the metadata of the current section.
func (e *Engine) Section() (catalog.SectionInfo, error) {
	if e.total == 0 {
		return catalog.SectionInfo{}, ErrEmptyCatalog
	}
	return e.sections[e.sec].SectionInfo, nil
}

// Answer validates value against the question's kind and records it.
// A rejected answer leaves the response map untouched. The returned
// milestone is 0 unless this write crossed an unreported progress
// threshold.
func (e *Engine) Answer(key string, value any) (milestone int, err error) {
	q, ok := e.byKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown question %q", ErrValidation, key)
	}
	normalized, err := normalizeAnswer(q, value)
	if err != nil {
		return 0, err
	}

	before := e.Progress()
	e.responses[key] = normalized
	if e.persist != nil {
		e.persist(e.Responses())
	}
	return e.crossMilestone(before), nil
}

// ToggleOption flips one option of a multi-choice question: selecting an
// already-selected option removes it. Double-toggle restores the prior set.
func (e *Engine) ToggleOption(key, option string) (milestone int, err error) {
	q, ok := e.byKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown question %q", ErrValidation, key)
	}
	if q.Kind != catalog.KindMulti {
		return 0, fmt.Errorf("%w: question %q is not multi-choice", ErrValidation, key)
	}
	if !q.HasOption(option) {
		return 0, fmt.Errorf("%w: option %q not offered by question %q", ErrValidation, option, key)
	}

	current, _ := toStringSlice(e.responses[key])
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, o := range current {
		if o == option {
			removed = true
			continue
		}
		next = append(next, o)
	}
	if !removed {
		next = append(next, option)
	}

	before := e.Progress()
	e.responses[key] = canonicalSet(q, next)
	if e.persist != nil {
		e.persist(e.Responses())
	}
	return e.crossMilestone(before), nil
}

// IsCurrentAnswered reports whether the cursor may advance. Multi-choice
// needs a non-empty set; free-text questions are optional and always count
// as answered.
func (e *Engine) IsCurrentAnswered() bool {
	q, err := e.Current()
	if err != nil {
		return false
	}
	return e.isAnswered(q)
}

func (e *Engine) isAnswered(q catalog.Question) bool {
	if q.Kind == catalog.KindText {
		return true
	}
	v, ok := e.responses[q.Key]
	if !ok {
		return false
	}
	if q.Kind == catalog.KindMulti {
		set, _ := toStringSlice(v)
		return len(set) > 0
	}
	return true
}

// Advance moves the cursor forward, crossing section boundaries. At the
// last question of the last section it marks the assessment complete and
// returns the final response map; later calls are no-ops that return the
// same map.
func (e *Engine) Advance() (completed map[string]any, err error) {
	if e.total == 0 {
		return nil, ErrEmptyCatalog
	}
	if e.done {
		return e.Responses(), nil
	}
	if !e.IsCurrentAnswered() {
		return nil, ErrNotAnswered
	}
	switch {
	case e.idx < len(e.sections[e.sec].Questions)-1:
		e.idx++
	case e.sec < len(e.sections)-1:
		e.sec++
		e.idx = 0
	default:
		e.done = true
		return e.Responses(), nil
	}
	return nil, nil
}

// Retreat moves the cursor backward, crossing section boundaries. No-op at
// the very first question and after completion.
func (e *Engine) Retreat() {
	if e.total == 0 || e.done {
		return
	}
	switch {
	case e.idx > 0:
		e.idx--
	case e.sec > 0:
		e.sec--
		e.idx = len(e.sections[e.sec].Questions) - 1
	}
}

// Progress returns the percentage of catalog questions with a recorded
// answer, rounded for display.
func (e *Engine) Progress() float64 {
	if e.total == 0 {
		return 0
	}
	answered := 0
	for k := range e.responses {
		if _, ok := e.byKey[k]; ok {
			answered++
		}
	}
	return math.Round(float64(answered) / float64(e.total) * 100)
}

// Responses returns a copy of the response map.
func (e *Engine) Responses() map[string]any {
	out := make(map[string]any, len(e.responses))
	for k, v := range e.responses {
		out[k] = v
	}
	return out
}

func (e *Engine) Done() bool { return e.done }

// Position returns the zero-based section and question cursor.
func (e *Engine) Position() (section, question int) { return e.sec, e.idx }

func (e *Engine) TotalQuestions() int { return e.total }

func (e *Engine) crossMilestone(before float64) int {
	after := e.Progress()
	if after < before {
		return 0
	}
	for _, m := range Milestones {
		if e.reported[m] {
			continue
		}
		if after >= float64(m) {
			e.reported[m] = true
			return m
		}
	}
	return 0
}

func normalizeAnswer(q catalog.Question, value any) (any, error) {
	switch q.Kind {
	case catalog.KindScale:
		n, ok := toInt(value)
		if !ok {
			return nil, fmt.Errorf("%w: scale answer for %q must be an integer", ErrValidation, q.Key)
		}
		if q.Scale == nil {
			return nil, fmt.Errorf("%w: question %q has no scale", ErrValidation, q.Key)
		}
		if n < q.Scale.Min || n > q.Scale.Max {
			return nil, fmt.Errorf("%w: scale answer %d for %q outside [%d,%d]",
				ErrValidation, n, q.Key, q.Scale.Min, q.Scale.Max)
		}
		return n, nil

	case catalog.KindSingle:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: answer for %q must be a string", ErrValidation, q.Key)
		}
		if !q.HasOption(s) {
			return nil, fmt.Errorf("%w: option %q not offered by question %q", ErrValidation, s, q.Key)
		}
		return s, nil

	case catalog.KindMulti:
		set, ok := toStringSlice(value)
		if !ok {
			return nil, fmt.Errorf("%w: answer for %q must be a list of options", ErrValidation, q.Key)
		}
		for _, s := range set {
			if !q.HasOption(s) {
				return nil, fmt.Errorf("%w: option %q not offered by question %q", ErrValidation, s, q.Key)
			}
		}
		return canonicalSet(q, set), nil

	case catalog.KindText:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: answer for %q must be a string", ErrValidation, q.Key)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unsupported question kind %q", ErrValidation, q.Kind)
}

// canonicalSet dedupes and orders a multi-choice selection by the question's
// option order, so equal sets always serialize identically.
func canonicalSet(q catalog.Question, selected []string) []string {
	seen := map[string]bool{}
	for _, s := range selected {
		seen[s] = true
	}
	out := make([]string, 0, len(seen))
	for _, o := range q.Options {
		if seen[o] {
			out = append(out, o)
			delete(seen, o)
		}
	}
	// Options dropped from the catalog since the answer was recorded keep a
	// stable tail position.
	if len(seen) > 0 {
		rest := make([]string, 0, len(seen))
		for s := range seen {
			rest = append(rest, s)
		}
		sort.Strings(rest)
		out = append(out, rest...)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func toStringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
