package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

// ErrPaymentRequired blocks analysis for sessions that have not paid.
var ErrPaymentRequired = errors.New("payment required before analysis")

// Service produces reports for completed assessments. Reports are memoized
// by response map, so re-requesting an unchanged assessment is free, while
// any edited answer produces a fresh report.
type Service struct {
	remote   *RemoteAnalyzer
	products catalog.ProductStore
	cache    *lru.Cache[string, Report]
	delay    time.Duration
	log      *zap.Logger
}

func NewService(remote *RemoteAnalyzer, products catalog.ProductStore, cacheSize int, delay time.Duration, log *zap.Logger) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, Report](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{remote: remote, products: products, cache: cache, delay: delay, log: log}, nil
}

// Analyze returns the report for a response map. Unpaid sessions get
// ErrPaymentRequired. The optional delay simulates analysis latency and is
// cut short by context cancellation.
func (s *Service) Analyze(ctx context.Context, userID string, responses map[string]any, hasPaid bool) (Report, error) {
	if !hasPaid {
		return Report{}, ErrPaymentRequired
	}
	key, err := cacheKey(responses)
	if err != nil {
		return Report{}, err
	}
	if r, ok := s.cache.Get(key); ok {
		return r, nil
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Report{}, ctx.Err()
		case <-t.C:
		}
	}

	if s.remote != nil {
		r, err := s.remote.Analyze(ctx, userID, responses)
		if err == nil {
			s.cache.Add(key, *r)
			return *r, nil
		}
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		s.log.Warn("remote analyzer failed, using local generator",
			zap.String("user_id", userID), zap.Error(err))
	}

	products, err := s.products.ListProducts(ctx, true)
	if err != nil {
		return Report{}, err
	}
	report := Generate(responses, products)
	s.cache.Add(key, report)
	return report, nil
}

// cacheKey serializes the response map with sorted keys; json.Marshal on a
// map already guarantees key order.
func cacheKey(responses map[string]any) (string, error) {
	b, err := json.Marshal(responses)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
