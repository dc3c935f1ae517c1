package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types recorded by the funnel.
const (
	TypeVisitorSignedUp     = "visitor_signed_up"
	TypeAssessmentCompleted = "assessment_completed"
	TypePaymentConfirmed    = "payment_confirmed"
	TypePaymentRefunded     = "payment_refunded"
)

type Event struct {
	Offset    int64           `json:"offset"`
	SiteID    string          `json:"site_id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Log is an append-only record of funnel events backed by the event_log
// table. It is best-effort observability: callers ignore append errors
// rather than failing the user-facing operation. A nil Log discards
// everything, which keeps tests free of database plumbing.
type Log struct {
	db *sql.DB
}

func NewLog(db *sql.DB) *Log {
	return &Log{db: db}
}

// Append records one event. key identifies the subject (usually a session
// id); data is marshaled to JSON and may be nil.
func (l *Log) Append(ctx context.Context, typ, key string, data any) error {
	if l == nil || l.db == nil {
		return nil
	}
	var payload []byte
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		if err != nil {
			return err
		}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1, $2, $3, $4)`,
		typ, key, string(payload), time.Now().Unix())
	return err
}

// Recent returns up to limit events, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT offset_id, site_id, typ, key, data, created_at
		 FROM event_log ORDER BY offset_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var data sql.NullString
		var created int64
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &data, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		if data.Valid && data.String != "" {
			e.Data = json.RawMessage(data.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
