package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Mirror keeps a local copy of the active session under three well-known
// keys, written after every mutation and read back at startup. It is the
// server-side analogue of the browser's persisted funnel state.
const (
	keyIdentity  = "current_user.json"
	keyResponses = "user_responses.json"
	keyPayment   = "payment_status.json"
)

type Mirror struct{ base string }

func NewMirror(base string) (*Mirror, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &Mirror{base: base}, nil
}

type mirrorIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type mirrorPayment struct {
	HasPaid   bool   `json:"has_paid"`
	PaymentID string `json:"payment_id,omitempty"`
}

func (m *Mirror) SaveIdentity(s Session) error {
	return m.write(keyIdentity, mirrorIdentity{ID: s.ID, Name: s.Name, Email: s.Email})
}

func (m *Mirror) SaveResponses(responses map[string]any) error {
	if responses == nil {
		responses = map[string]any{}
	}
	return m.write(keyResponses, responses)
}

func (m *Mirror) SavePayment(hasPaid bool, paymentID string) error {
	return m.write(keyPayment, mirrorPayment{HasPaid: hasPaid, PaymentID: paymentID})
}

// Load restores the mirrored session, or ErrNotFound when no identity has
// been written yet. Missing responses or payment entries are tolerated.
func (m *Mirror) Load() (Session, error) {
	var id mirrorIdentity
	if err := m.read(keyIdentity, &id); err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	s := Session{ID: id.ID, Name: id.Name, Email: id.Email, Responses: map[string]any{}}
	if err := m.read(keyResponses, &s.Responses); err != nil && !os.IsNotExist(err) {
		return Session{}, err
	}
	var pay mirrorPayment
	if err := m.read(keyPayment, &pay); err != nil && !os.IsNotExist(err) {
		return Session{}, err
	}
	s.HasPaid = pay.HasPaid
	s.PaymentID = pay.PaymentID
	return s, nil
}

// Reset discards all mirrored state (logout).
func (m *Mirror) Reset() error {
	var firstErr error
	for _, key := range []string{keyIdentity, keyResponses, keyPayment} {
		if err := os.Remove(filepath.Join(m.base, key)); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Mirror) write(key string, v any) error {
	if key == "" {
		return errors.New("empty key")
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dst := filepath.Join(m.base, filepath.Clean(key))
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func (m *Mirror) read(key string, v any) error {
	buf, err := os.ReadFile(filepath.Join(m.base, filepath.Clean(key)))
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, v)
}
