// Package api exposes match storage and analysis over HTTP. Handlers
// recompute timelines from stored samples on every read, so responses
// always reflect the server's current tuning; the events table written
// on ingest is the durable record for offline queries.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ringside-data/stock.report/internal/db"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/report"
	"github.com/ringside-data/stock.report/internal/vision"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db     *db.DB
	engine *match.Engine
	vision *vision.Client
}

// NewServer wires the handlers to their dependencies. The vision client
// may be nil when no refinement service is configured.
func NewServer(database *db.DB, engine *match.Engine, visionClient *vision.Client) *Server {
	return &Server{
		db:     database,
		engine: engine,
		vision: visionClient,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/matches", s.handleMatches)
	mux.HandleFunc("/api/matches/", s.handleMatchByID)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// analyzeStored loads a match and its samples and runs the engine over
// them, applying vision refinement when a client is configured. Samples
// are stored in screen orientation; right-side matches are swapped here
// so the returned samples and timeline are both framed from the
// analyzed player. Errors from the store pass through unwrapped so
// callers can test for db.ErrNotFound.
func (s *Server) analyzeStored(ctx context.Context, id string) (*db.Match, []match.Sample, *match.Timeline, error) {
	m, err := s.db.GetMatch(id)
	if err != nil {
		return nil, nil, nil, err
	}

	samples, err := s.db.GetSamples(id)
	if err != nil {
		return nil, nil, nil, err
	}
	if !m.YouAreP1 {
		samples = match.SwapSamples(samples)
	}

	tl := s.engine.Analyze(samples)
	tl = s.vision.Refine(ctx, id, tl)

	return m, samples, tl, nil
}

// metaFor builds report metadata in the analyzed player's frame.
// Characters are stored in screen order, so right-side matches swap
// them to line the labels up with the analysis output.
func metaFor(m *db.Match) report.Meta {
	meta := report.Meta{
		MatchID:     m.ID,
		P1Character: m.P1Character,
		P2Character: m.P2Character,
		Source:      m.Source,
	}
	if !m.YouAreP1 {
		meta.P1Character, meta.P2Character = meta.P2Character, meta.P1Character
	}
	return meta
}
