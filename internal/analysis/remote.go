package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteAnalyzer calls an external analysis service over HTTP. It is an
// optional upgrade path; callers fall back to the local generator whenever
// the remote is unconfigured or unreachable.
type RemoteAnalyzer struct {
	baseURL string
	client  *http.Client
}

func NewRemoteAnalyzer(baseURL string) *RemoteAnalyzer {
	return &RemoteAnalyzer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type analyzeRequest struct {
	UserID    string         `json:"user_id"`
	Responses map[string]any `json:"responses"`
}

func (a *RemoteAnalyzer) Analyze(ctx context.Context, userID string, responses map[string]any) (*Report, error) {
	body, err := json.Marshal(analyzeRequest{UserID: userID, Responses: responses})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/ai/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analyzer returned %d: %s", resp.StatusCode, snippet)
	}
	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode analyzer response: %w", err)
	}
	return &report, nil
}
