package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ringside-data/stock.report/internal/db"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/testutil"
)

// Helper functions

func setupTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()

	dbInst, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { dbInst.Close() })

	if err := dbInst.MigrateUp("../../migrations"); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	engine := match.New(match.DefaultConfig())
	server := NewServer(dbInst, engine, nil)

	return server, dbInst
}

func serveRequest(t *testing.T, server *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	server.ServeMux().ServeHTTP(w, req)
	return w
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, colorBoldGreen + "200" + colorReset},
		{201, colorBoldGreen + "201" + colorReset},
		{302, colorYellow + "302" + colorReset},
		{404, colorBoldRed + "404" + colorReset},
		{500, colorBoldRed + "500" + colorReset},
		{101, "101"},
	}

	for _, tt := range tests {
		if got := statusCodeColor(tt.code); got != tt.want {
			t.Errorf("statusCodeColor(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	w := httptest.NewRecorder()

	LoggingMiddleware(inner).ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusTeapot)
	if got := w.Body.String(); got != "short and stout" {
		t.Errorf("body = %q, want it unchanged", got)
	}
}

func TestLoggingResponseWriterDefaultsToOK(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("implicit 200"))
	})

	req := httptest.NewRequest(http.MethodGet, "/implicit", nil)
	w := httptest.NewRecorder()

	LoggingMiddleware(inner).ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
}

func TestHealthz(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz body = %q, want status ok", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"version"`) {
		t.Errorf("healthz body = %q, want a version field", w.Body.String())
	}
}

func TestHealthz_MethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusMethodNotAllowed)
}

func TestMatchesCollection_MethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/matches", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusMethodNotAllowed)
}

func TestMatchByID_EmptyID(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusBadRequest)
}

func TestMatchByID_UnknownResource(t *testing.T) {
	server, dbInst := setupTestServer(t)
	id := seedAnalyzedMatch(t, server, dbInst)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/"+id+"/clips", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}

func TestMatchByID_DeepPath(t *testing.T) {
	server, dbInst := setupTestServer(t)
	id := seedAnalyzedMatch(t, server, dbInst)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/"+id+"/timeline/extra", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}

func TestMatchSubresource_MethodNotAllowed(t *testing.T) {
	server, dbInst := setupTestServer(t)
	id := seedAnalyzedMatch(t, server, dbInst)

	req := httptest.NewRequest(http.MethodPost, "/api/matches/"+id+"/timeline", nil)
	w := serveRequest(t, server, req)

	testutil.AssertStatusCode(t, w.Code, http.StatusMethodNotAllowed)
}
