package catalog

import (
	"context"
	"errors"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("question key already exists")
)

// QuestionPatch carries partial updates; nil fields are left untouched.
type QuestionPatch struct {
	Section    *string   `json:"section,omitempty"`
	Text       *string   `json:"text,omitempty"`
	Help       *string   `json:"help,omitempty"`
	Kind       *Kind     `json:"kind,omitempty"`
	Options    *[]string `json:"options,omitempty"`
	Scale      *Scale    `json:"scale,omitempty"`
	OrderIndex *int      `json:"order_index,omitempty"`
	Active     *bool     `json:"active,omitempty"`
}

type ProductPatch struct {
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	Description  *string `json:"description,omitempty"`
	Price        *string `json:"price,omitempty"`
	AffiliateURL *string `json:"affiliate_url,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

type QuestionStore interface {
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	GetQuestionByKey(ctx context.Context, key string) (Question, error)
	UpdateQuestion(ctx context.Context, id string, p QuestionPatch) (Question, error)
	ToggleQuestion(ctx context.Context, id string) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	// ListQuestions returns questions in order-index order. activeOnly skips
	// deactivated records.
	ListQuestions(ctx context.Context, activeOnly bool) ([]Question, error)
	QuestionsBySection(ctx context.Context, section string) ([]Question, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
}

/// Store is the full admin catalog: two independent CRUD collections.
type Store interface {
	QuestionStore
	ProductStore
}

type memoryStore struct {
	mu        sync.RWMutex
	questions []Question // insertion order
	products  []Product
}

func NewInMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) CreateQuestion(_ context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.questions {
		if e.Key == q.Key {
			return Question{}, ErrDuplicateKey
		}
	}
	q.ID = uuid.NewString()
	m.questions = append(m.questions, q)
	return q, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, ErrNotFound
}

func (m *memoryStore) GetQuestionByKey(_ context.Context, key string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.questions {
		if q.Key == key {
			return q, nil
		}
	}
	return Question{}, ErrNotFound
}

func (m *memoryStore) UpdateQuestion(_ context.Context, id string, p QuestionPatch) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.questions {
		if q.ID != id {
			continue
		}
		applyQuestionPatch(&q, p)
		m.questions[i] = q
		return q, nil
	}
	return Question{}, ErrNotFound
}

func (m *memoryStore) ToggleQuestion(_ context.Context, id string) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.questions {
		if q.ID == id {
			m.questions[i].Active = !q.Active
			return m.questions[i], nil
		}
	}
	return Question{}, ErrNotFound
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.questions {
		if q.ID == id {
			m.questions = append(m.questions[:i], m.questions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) ListQuestions(_ context.Context, activeOnly bool) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		if activeOnly && !q.Active {
			continue
		}
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memoryStore) QuestionsBySection(ctx context.Context, section string) ([]Question, error) {
	all, err := m.ListQuestions(ctx, true)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, q := range all {
		if q.Section == section {
			out = append(out, q)
		}
	}
	return out, nil
}

// AllQuestions yields a restartable sequence over a snapshot of the
// collection in insertion order.
func (m *memoryStore) AllQuestions() iter.Seq[Question] {
	m.mu.RLock()
	snap := make([]Question, len(m.questions))
	copy(snap, m.questions)
	m.mu.RUnlock()
	return func(yield func(Question) bool) {
		for _, q := range snap {
			if !yield(q) {
				return
			}
		}
	}
}

func (m *memoryStore) CreateProduct(_ context.Context, p Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	m.products = append(m.products, p)
	return p, nil
}

func (m *memoryStore) GetProduct(_ context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (m *memoryStore) UpdateProduct(_ context.Context, id string, patch ProductPatch) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID != id {
			continue
		}
		applyProductPatch(&p, patch)
		m.products[i] = p
		return p, nil
	}
	return Product{}, ErrNotFound
}

func (m *memoryStore) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) ListProducts(_ context.Context, activeOnly bool) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func applyQuestionPatch(q *Question, p QuestionPatch) {
	if p.Section != nil {
		q.Section = *p.Section
	}
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Help != nil {
		q.Help = *p.Help
	}
	if p.Kind != nil {
		q.Kind = *p.Kind
	}
	if p.Options != nil {
		q.Options = *p.Options
	}
	if p.Scale != nil {
		s := *p.Scale
		q.Scale = &s
	}
	if p.OrderIndex != nil {
		q.OrderIndex = *p.OrderIndex
	}
	if p.Active != nil {
		q.Active = *p.Active
	}
}

func applyProductPatch(p *Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.AffiliateURL != nil {
		p.AffiliateURL = *patch.AffiliateURL
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
}
