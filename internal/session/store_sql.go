package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, name, email string) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Responses: map[string]any{},
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id,name,email,responses_json,has_paid,created_at)
		 VALUES ($1,$2,$3,'{}',0,$4)`,
		sess.ID, sess.Name, sess.Email, sess.CreatedAt)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,email,responses_json,has_paid,payment_id,created_at
		 FROM sessions WHERE id=$1`, id)
	return scanSession(row)
}

func (s *SQLStore) SaveResponses(ctx context.Context, id string, responses map[string]any) error {
	buf, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	return s.exec(ctx, `UPDATE sessions SET responses_json=$1 WHERE id=$2`, string(buf), id)
}

func (s *SQLStore) MarkPaid(ctx context.Context, id, paymentID string) error {
	return s.exec(ctx, `UPDATE sessions SET has_paid=1, payment_id=$1 WHERE id=$2`, paymentID, id)
}

func (s *SQLStore) ClearPayment(ctx context.Context, id string) error {
	return s.exec(ctx, `UPDATE sessions SET has_paid=0, payment_id=NULL WHERE id=$1`, id)
}

func (s *SQLStore) Update(ctx context.Context, id string, p Patch) (Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	applyPatch(&sess, p)
	var paymentID any
	if sess.PaymentID != "" {
		paymentID = sess.PaymentID
	}
	err = s.exec(ctx,
		`UPDATE sessions SET name=$1, email=$2, has_paid=$3, payment_id=$4 WHERE id=$5`,
		sess.Name, sess.Email, boolToInt(sess.HasPaid), paymentID, id)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,email,responses_json,has_paid,payment_id,created_at
		 FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLStore) CompleteAssessment(ctx context.Context, sessionID string, responses map[string]any) (Assessment, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return Assessment{}, err
	}
	a := Assessment{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Responses:   responses,
		CompletedAt: time.Now().Unix(),
	}
	buf, err := json.Marshal(responses)
	if err != nil {
		return Assessment{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id,session_id,responses_json,completed_at)
		 VALUES ($1,$2,$3,$4)`,
		a.ID, a.SessionID, string(buf), a.CompletedAt)
	if err != nil {
		return Assessment{}, err
	}
	return a, nil
}

func (s *SQLStore) LatestAssessment(ctx context.Context, sessionID string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,session_id,responses_json,report_json,completed_at
		 FROM assessments WHERE session_id=$1
		 ORDER BY completed_at DESC, id DESC LIMIT 1`, sessionID)
	return scanAssessment(row)
}

func (s *SQLStore) ListAssessments(ctx context.Context, sessionID string) ([]Assessment, error) {
	query := `SELECT id,session_id,responses_json,report_json,completed_at FROM assessments`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id=$1`
		args = append(args, sessionID)
	}
	query += ` ORDER BY completed_at, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveAssessmentReport(ctx context.Context, assessmentID string, report json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET report_json=$1 WHERE id=$2`, string(report), assessmentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var (
		sess      Session
		rjson     string
		paid      int
		paymentID sql.NullString
	)
	err := row.Scan(&sess.ID, &sess.Name, &sess.Email, &rjson, &paid, &paymentID, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	sess.HasPaid = paid != 0
	sess.PaymentID = paymentID.String
	if err := json.Unmarshal([]byte(rjson), &sess.Responses); err != nil {
		sess.Responses = map[string]any{}
	}
	return sess, nil
}

func scanAssessment(row rowScanner) (Assessment, error) {
	var (
		a     Assessment
		rjson string
		rep   sql.NullString
	)
	err := row.Scan(&a.ID, &a.SessionID, &rjson, &rep, &a.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Assessment{}, ErrNotFound
	}
	if err != nil {
		return Assessment{}, err
	}
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
		a.Responses = map[string]any{}
	}
	if rep.Valid && rep.String != "" {
		a.Report = json.RawMessage(rep.String)
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
