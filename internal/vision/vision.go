// Package vision gates heuristic edgeguard events through an external
// frame classifier. The classifier watches the recorded video around each
// candidate and reports how much of that window the victim spent off-stage
// or hanging on the ledge.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ringside-data/stock.report/internal/httputil"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/monitoring"
)

// Thresholds for accepting a candidate: the victim must be off-stage for
// at least MinOffstageRatio of the classified window, and ledge-hanging
// (a recovery, not an edgeguard kill) for less than MaxLedgeRatio of it.
const (
	MinOffstageRatio = 0.4
	MaxLedgeRatio    = 0.6
)

// DefaultTimeout bounds one classify round trip.
const DefaultTimeout = 5 * time.Second

// Client talks to the frame classifier service.
type Client struct {
	BaseURL string
	HTTP    httputil.HTTPClient
	Timeout time.Duration
}

// NewClient builds a classifier client for baseURL. A nil httpClient gets
// the standard client; a non-positive timeout gets DefaultTimeout.
func NewClient(baseURL string, httpClient httputil.HTTPClient, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(nil)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    httpClient,
		Timeout: timeout,
	}
}

// Candidate is one heuristic edgeguard handed to the classifier.
type Candidate struct {
	Timestamp float64 `json:"timestamp"`
	Victim    string  `json:"victim"`
	Type      string  `json:"type"`
}

// Result is the classifier's verdict on one candidate.
type Result struct {
	Timestamp           float64 `json:"timestamp"`
	Victim              string  `json:"victim"`
	Type                string  `json:"type"`
	VictimOffstageRatio float64 `json:"victim_offstage_ratio"`
	VictimLedgeRatio    float64 `json:"victim_ledge_ratio"`
	IsEdgeguard         bool    `json:"is_edgeguard"`
}

// Keep reports whether the classified ratios confirm the candidate.
func (r Result) Keep() bool {
	return r.VictimOffstageRatio >= MinOffstageRatio && r.VictimLedgeRatio < MaxLedgeRatio
}

type classifyRequest struct {
	MatchID    string      `json:"match_id"`
	Candidates []Candidate `json:"candidates"`
}

type classifyResponse struct {
	Results []Result `json:"results"`
}

// Classify sends candidates to the classifier and returns its verdicts.
func (c *Client) Classify(ctx context.Context, matchID string, candidates []Candidate) ([]Result, error) {
	body, err := json.Marshal(classifyRequest{MatchID: matchID, Candidates: candidates})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classify request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode classify response: %w", err)
	}

	return decoded.Results, nil
}

// Refine re-examines a timeline's edgeguard events against the classifier
// and returns a timeline with the rejected ones removed. The heuristic
// results stand untouched when the client is absent, there is nothing to
// classify, or the classifier errors out; tl itself is never mutated.
func (c *Client) Refine(ctx context.Context, matchID string, tl *match.Timeline) *match.Timeline {
	if c == nil || c.BaseURL == "" {
		return tl
	}

	candidates := make([]Candidate, 0, len(tl.Edgeguards)+len(tl.GotEdgeguarded))
	for _, ev := range tl.Edgeguards {
		candidates = append(candidates, candidateFor(ev))
	}
	for _, ev := range tl.GotEdgeguarded {
		candidates = append(candidates, candidateFor(ev))
	}
	if len(candidates) == 0 {
		return tl
	}

	results, err := c.Classify(ctx, matchID, candidates)
	if err != nil {
		monitoring.Logf("vision: classify failed for match %s, keeping heuristic edgeguards: %v", matchID, err)
		return tl
	}

	verdicts := make(map[string]Result, len(results))
	for _, r := range results {
		verdicts[resultKey(r.Timestamp, r.Victim)] = r
	}

	refined := *tl
	refined.Edgeguards = filterEdgeguards(tl.Edgeguards, verdicts)
	refined.GotEdgeguarded = filterEdgeguards(tl.GotEdgeguarded, verdicts)
	return &refined
}

// filterEdgeguards keeps the events the classifier confirmed. An event the
// classifier returned no verdict for keeps its heuristic result.
func filterEdgeguards(events []match.EdgeguardEvent, verdicts map[string]Result) []match.EdgeguardEvent {
	kept := make([]match.EdgeguardEvent, 0, len(events))
	for _, ev := range events {
		r, ok := verdicts[resultKey(ev.Timestamp, string(ev.Victim))]
		if ok && !r.Keep() {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

func candidateFor(ev match.EdgeguardEvent) Candidate {
	return Candidate{
		Timestamp: ev.Timestamp,
		Victim:    string(ev.Victim),
		Type:      string(ev.Kind()),
	}
}

func resultKey(ts float64, victim string) string {
	return fmt.Sprintf("%.3f|%s", ts, victim)
}
