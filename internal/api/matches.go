package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ringside-data/stock.report/internal/db"
	"github.com/ringside-data/stock.report/internal/habits"
	"github.com/ringside-data/stock.report/internal/httputil"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/report"
	"github.com/ringside-data/stock.report/internal/security"
	"github.com/ringside-data/stock.report/internal/skill"
	"github.com/ringside-data/stock.report/internal/version"
)

// CreateMatchRequest is the POST /api/matches body. Characters left
// empty are lifted from the first sample that carries them, so OCR
// sources don't have to repeat themselves. YouAreP1 omitted means true:
// the analyzed player is the left-side player unless the client says
// otherwise. Samples always arrive in screen orientation.
type CreateMatchRequest struct {
	Source      string         `json:"source"`
	YouAreP1    *bool          `json:"you_are_p1"`
	P1Character string         `json:"p1_character"`
	P2Character string         `json:"p2_character"`
	Samples     []match.Sample `json:"samples"`
}

// CreateMatchResponse returns the stored match row alongside the
// timeline produced by the ingest analysis.
type CreateMatchResponse struct {
	Match    db.Match        `json:"match"`
	Timeline *match.Timeline `json:"timeline"`
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMatches(w, r)
	case http.MethodPost:
		s.createMatch(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.db.ListMatches()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list matches: %v", err))
		return
	}

	if matches == nil {
		matches = []db.Match{}
	}

	httputil.WriteJSONOK(w, matches)
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if len(req.Samples) == 0 {
		httputil.BadRequest(w, "at least one sample is required")
		return
	}

	p1Char, p2Char := req.P1Character, req.P2Character
	for _, sample := range req.Samples {
		if p1Char == "" && sample.P1Character != "" {
			p1Char = sample.P1Character
		}
		if p2Char == "" && sample.P2Character != "" {
			p2Char = sample.P2Character
		}
		if p1Char != "" && p2Char != "" {
			break
		}
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	youAreP1 := true
	if req.YouAreP1 != nil {
		youAreP1 = *req.YouAreP1
	}

	m := &db.Match{
		Source:      source,
		YouAreP1:    youAreP1,
		P1Character: p1Char,
		P2Character: p2Char,
	}
	if err := s.db.InsertMatch(m); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to insert match: %v", err))
		return
	}

	if err := s.db.InsertSamples(r.Context(), m.ID, req.Samples); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to insert samples: %v", err))
		return
	}

	analysisSamples := req.Samples
	if !youAreP1 {
		analysisSamples = match.SwapSamples(analysisSamples)
	}
	tl := s.engine.Analyze(analysisSamples)
	tl = s.vision.Refine(r.Context(), m.ID, tl)

	if err := s.db.SetMatchResult(m.ID, tl.Stats.Duration, string(tl.Stats.Winner)); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to record match result: %v", err))
		return
	}

	rows, err := db.EventRowsFromTimeline(m.ID, tl)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to flatten events: %v", err))
		return
	}
	if err := s.db.ReplaceEvents(r.Context(), m.ID, rows); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to store events: %v", err))
		return
	}

	stored, err := s.db.GetMatch(m.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to reload match: %v", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateMatchResponse{
		Match:    *stored,
		Timeline: tl,
	})
}

func (s *Server) handleMatchByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/matches/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	id := strings.TrimSpace(parts[0])
	if id == "" {
		httputil.BadRequest(w, "match_id is required")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.getMatch(w, r, id)
		case http.MethodDelete:
			s.deleteMatch(w, r, id)
		default:
			httputil.MethodNotAllowed(w)
		}
		return
	}

	if len(parts) != 2 {
		httputil.NotFound(w, "unknown match resource")
		return
	}

	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	switch parts[1] {
	case "timeline":
		s.getTimeline(w, r, id)
	case "skill":
		s.getSkill(w, r, id)
	case "habits":
		s.getHabits(w, r, id)
	case "report":
		s.getReport(w, r, id)
	case "chart.png":
		s.getChartPNG(w, r, id)
	default:
		httputil.NotFound(w, "unknown match resource")
	}
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request, id string) {
	m, err := s.db.GetMatch(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to get match: %v", err))
		return
	}

	httputil.WriteJSONOK(w, m)
}

func (s *Server) deleteMatch(w http.ResponseWriter, r *http.Request, id string) {
	err := s.db.DeleteMatch(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete match: %v", err))
		return
	}

	httputil.WriteJSONOK(w, map[string]string{
		"status":   "deleted",
		"match_id": id,
	})
}

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request, id string) {
	_, _, tl, err := s.analyzeStored(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to analyze match: %v", err))
		return
	}

	httputil.WriteJSONOK(w, tl)
}

func (s *Server) getSkill(w http.ResponseWriter, r *http.Request, id string) {
	_, _, tl, err := s.analyzeStored(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to analyze match: %v", err))
		return
	}

	httputil.WriteJSONOK(w, skill.Estimate(tl))
}

func (s *Server) getHabits(w http.ResponseWriter, r *http.Request, id string) {
	_, _, tl, err := s.analyzeStored(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to analyze match: %v", err))
		return
	}

	httputil.WriteJSONOK(w, habits.Detect(tl))
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request, id string) {
	m, samples, tl, err := s.analyzeStored(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to analyze match: %v", err))
		return
	}

	// Render into a buffer so a mid-render failure can still produce a
	// clean JSON error instead of a truncated page.
	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, metaFor(m), samples, tl); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render report: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) getChartPNG(w http.ResponseWriter, r *http.Request, id string) {
	m, samples, tl, err := s.analyzeStored(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "match not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to analyze match: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := report.RenderPNG(&buf, metaFor(m), samples, tl); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=match_%s.png", security.SanitizeFilename(m.ID)))
	w.Write(buf.Bytes())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.Version})
}
