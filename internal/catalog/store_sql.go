package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists both collections; it backs the admin panel while the
// in-memory store serves tests and catalog-less dev runs.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE key=$1`, q.Key).Scan(&exists)
	if err == nil {
		return Question{}, ErrDuplicateKey
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Question{}, err
	}

	q.ID = uuid.NewString()
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return Question{}, err
	}
	sj, err := marshalScale(q.Scale)
	if err != nil {
		return Question{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id,key,section,text,help,kind,options_json,scale_json,order_index,active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		q.ID, q.Key, q.Section, q.Text, q.Help, string(q.Kind), string(oj), sj, q.OrderIndex, boolToInt(q.Active))
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	return s.questionBy(ctx, `id`, id)
}

func (s *SQLStore) GetQuestionByKey(ctx context.Context, key string) (Question, error) {
	return s.questionBy(ctx, `key`, key)
}

func (s *SQLStore) questionBy(ctx context.Context, col, val string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,key,section,text,help,kind,options_json,scale_json,order_index,active
		 FROM questions WHERE `+col+`=$1`, val)
	return scanQuestion(row)
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, id string, p QuestionPatch) (Question, error) {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	applyQuestionPatch(&q, p)
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return Question{}, err
	}
	sj, err := marshalScale(q.Scale)
	if err != nil {
		return Question{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE questions SET section=$1,text=$2,help=$3,kind=$4,options_json=$5,scale_json=$6,order_index=$7,active=$8 WHERE id=$9`,
		q.Section, q.Text, q.Help, string(q.Kind), string(oj), sj, q.OrderIndex, boolToInt(q.Active), id)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) ToggleQuestion(ctx context.Context, id string) (Question, error) {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	active := !q.Active
	if _, err := s.db.ExecContext(ctx, `UPDATE questions SET active=$1 WHERE id=$2`, boolToInt(active), id); err != nil {
		return Question{}, err
	}
	q.Active = active
	return q, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, activeOnly bool) ([]Question, error) {
	query := `SELECT id,key,section,text,help,kind,options_json,scale_json,order_index,active
	          FROM questions`
	if activeOnly {
		query += ` WHERE active=1`
	}
	query += ` ORDER BY order_index`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (s *SQLStore) QuestionsBySection(ctx context.Context, section string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,key,section,text,help,kind,options_json,scale_json,order_index,active
		 FROM questions WHERE section=$1 AND active=1 ORDER BY order_index`, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (s *SQLStore) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.ID = uuid.NewString()
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id,name,category,description,price,affiliate_url,image_url,active,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Category, p.Description, p.Price, p.AffiliateURL, p.ImageURL, boolToInt(p.Active), p.CreatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *SQLStore) GetProduct(ctx context.Context, id string) (Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,category,description,price,affiliate_url,image_url,active,created_at
		 FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

func (s *SQLStore) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	applyProductPatch(&p, patch)
	_, err = s.db.ExecContext(ctx,
		`UPDATE products SET name=$1,category=$2,description=$3,price=$4,affiliate_url=$5,image_url=$6,active=$7 WHERE id=$8`,
		p.Name, p.Category, p.Description, p.Price, p.AffiliateURL, p.ImageURL, boolToInt(p.Active), id)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT id,name,category,description,price,affiliate_url,image_url,active,created_at
	          FROM products`
	if activeOnly {
		query += ` WHERE active=1`
	}
	query += ` ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var (
		q      Question
		kind   string
		oj     string
		sj     sql.NullString
		active int
	)
	err := row.Scan(&q.ID, &q.Key, &q.Section, &q.Text, &q.Help, &kind, &oj, &sj, &q.OrderIndex, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	if err != nil {
		return Question{}, err
	}
	q.Kind = Kind(kind)
	q.Active = active != 0
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	if sj.Valid && sj.String != "" {
		var sc Scale
		if err := json.Unmarshal([]byte(sj.String), &sc); err != nil {
			return Question{}, err
		}
		q.Scale = &sc
	}
	return q, nil
}

func collectQuestions(rows *sql.Rows) ([]Question, error) {
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p      Product
		active int
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.Price, &p.AffiliateURL, &p.ImageURL, &active, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.Active = active != 0
	return p, nil
}

func marshalScale(s *Scale) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
