package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Session is the funnel state of one visitor: identity, the in-progress
// response map and the payment flag. Mirrored locally after every mutation.
type Session struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Responses map[string]any `json:"responses"`
	HasPaid   bool           `json:"has_paid"`
	PaymentID string         `json:"payment_id,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

// Assessment is a completed response map, optionally with the generated
// report attached.
type Assessment struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Responses   map[string]any  `json:"responses"`
	Report      json.RawMessage `json:"report,omitempty"`
	CompletedAt int64           `json:"completed_at"`
}

// Patch carries partial admin updates; nil fields are left untouched.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	HasPaid *bool   `json:"has_paid,omitempty"`
}

type Stats struct {
	TotalSessions      int `json:"totalUsers"`
	PaidSessions       int `json:"totalPayments"`
	CompletedAnalyses  int `json:"completedAnalyses"`
	TotalRevenueDollar int `json:"totalRevenue"`
}

type Store interface {
	Create(ctx context.Context, name, email string) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	SaveResponses(ctx context.Context, id string, responses map[string]any) error
	MarkPaid(ctx context.Context, id, paymentID string) error
	ClearPayment(ctx context.Context, id string) error
	Update(ctx context.Context, id string, p Patch) (Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Session, error)

	CompleteAssessment(ctx context.Context, sessionID string, responses map[string]any) (Assessment, error)
	LatestAssessment(ctx context.Context, sessionID string) (Assessment, error)
	// ListAssessments filters by session when sessionID is non-empty.
	ListAssessments(ctx context.Context, sessionID string) ([]Assessment, error)
	SaveAssessmentReport(ctx context.Context, assessmentID string, report json.RawMessage) error
}

type memoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]Session
	order       []string
	assessments []Assessment
}

func NewInMemoryStore() Store {
	return &memoryStore{sessions: map[string]Session{}}
}

func (m *memoryStore) Create(_ context.Context, name, email string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Session{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Responses: map[string]any{},
		CreatedAt: time.Now().Unix(),
	}
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	return s, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *memoryStore) SaveResponses(_ context.Context, id string, responses map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Responses = responses
	m.sessions[id] = s
	return nil
}

func (m *memoryStore) MarkPaid(_ context.Context, id, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.HasPaid = true
	s.PaymentID = paymentID
	m.sessions[id] = s
	return nil
}

func (m *memoryStore) ClearPayment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.HasPaid = false
	s.PaymentID = ""
	m.sessions[id] = s
	return nil
}

func (m *memoryStore) Update(_ context.Context, id string, p Patch) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	applyPatch(&s, p)
	m.sessions[id] = s
	return s, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	for i, sid := range m.order {
		if sid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	kept := m.assessments[:0]
	for _, a := range m.assessments {
		if a.SessionID != id {
			kept = append(kept, a)
		}
	}
	m.assessments = kept
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sessions[id])
	}
	return out, nil
}

func (m *memoryStore) CompleteAssessment(_ context.Context, sessionID string, responses map[string]any) (Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return Assessment{}, ErrNotFound
	}
	a := Assessment{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Responses:   responses,
		CompletedAt: time.Now().Unix(),
	}
	m.assessments = append(m.assessments, a)
	return a, nil
}

func (m *memoryStore) LatestAssessment(_ context.Context, sessionID string) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.assessments) - 1; i >= 0; i-- {
		if m.assessments[i].SessionID == sessionID {
			return m.assessments[i], nil
		}
	}
	return Assessment{}, ErrNotFound
}

func (m *memoryStore) ListAssessments(_ context.Context, sessionID string) ([]Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Assessment
	for _, a := range m.assessments {
		if sessionID == "" || a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveAssessmentReport(_ context.Context, assessmentID string, report json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.assessments {
		if a.ID == assessmentID {
			m.assessments[i].Report = report
			return nil
		}
	}
	return ErrNotFound
}

func applyPatch(s *Session, p Patch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.HasPaid != nil {
		s.HasPaid = *p.HasPaid
		if !s.HasPaid {
			s.PaymentID = ""
		}
	}
}
