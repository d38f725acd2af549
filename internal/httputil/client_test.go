package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStandardClient_Wraps(t *testing.T) {
	customClient := &http.Client{}
	client := NewStandardClient(customClient)

	if client.Client != customClient {
		t.Error("expected custom client to be wrapped")
	}
}

func TestStandardClient_NilDefaults(t *testing.T) {
	client := NewStandardClient(nil)
	if client.Client != http.DefaultClient {
		t.Error("nil client should fall back to http.DefaultClient")
	}
}

func TestStandardClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		if _, err := w.Write([]byte("short and stout")); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	defer server.Close()

	client := NewStandardClient(nil)
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("got status %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
}

func TestMockHTTPClient_AddResponse(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "hello")
	mock.AddResponse(http.StatusNotFound, "not found")

	if len(mock.Responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(mock.Responses))
	}
}

func TestMockHTTPClient_ReplaysInOrder(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"result": "first"}`)
	mock.AddResponse(http.StatusAccepted, `{"result": "second"}`)

	for i, want := range []struct {
		status int
		body   string
	}{
		{http.StatusOK, `{"result": "first"}`},
		{http.StatusAccepted, `{"result": "second"}`},
	} {
		req, _ := http.NewRequest(http.MethodGet, "http://example.com/api", nil)
		resp, err := mock.Do(req)
		if err != nil {
			t.Fatalf("Do %d failed: %v", i, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != want.status {
			t.Errorf("request %d: got status %d, want %d", i, resp.StatusCode, want.status)
		}
		if string(body) != want.body {
			t.Errorf("request %d: got body %q, want %q", i, string(body), want.body)
		}
	}

	if mock.RequestCount() != 2 {
		t.Errorf("got %d requests, want 2", mock.RequestCount())
	}
}

func TestMockHTTPClient_ExhaustedReturnsEmptyOK(t *testing.T) {
	mock := NewMockHTTPClient()

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	resp, err := mock.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("got body %q, want empty", string(body))
	}
}

func TestMockHTTPClient_ErrorResponse(t *testing.T) {
	wantErr := errors.New("connection refused")
	mock := NewMockHTTPClient()
	mock.AddErrorResponse(wantErr)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	_, err := mock.Do(req)
	if !errors.Is(err, wantErr) {
		t.Errorf("got error %v, want %v", err, wantErr)
	}
}

func TestMockHTTPClient_DefaultError(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DefaultError = errors.New("network down")

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := mock.Do(req); err == nil {
		t.Error("expected default error")
	}
}

func TestMockHTTPClient_DoFunc(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader("nope")),
			Header:     make(http.Header),
		}, nil
	}

	req, _ := http.NewRequest(http.MethodPost, "http://example.com/classify", nil)
	resp, err := mock.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("got status %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestMockHTTPClient_GetRequest(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "")

	req, _ := http.NewRequest(http.MethodPost, "http://example.com/classify", strings.NewReader("{}"))
	if _, err := mock.Do(req); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	got := mock.GetRequest(0)
	if got == nil {
		t.Fatal("GetRequest(0) returned nil")
	}
	if got.URL.Path != "/classify" {
		t.Errorf("got path %q, want /classify", got.URL.Path)
	}

	if mock.GetRequest(5) != nil {
		t.Error("GetRequest out of range should return nil")
	}
	if mock.GetRequest(-1) != nil {
		t.Error("GetRequest(-1) should return nil")
	}
}

func TestMockHTTPClient_Reset(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "x")
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := mock.Do(req); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	mock.Reset()

	if mock.RequestCount() != 0 {
		t.Errorf("got %d requests after reset, want 0", mock.RequestCount())
	}
	if len(mock.Responses) != 0 {
		t.Errorf("got %d responses after reset, want 0", len(mock.Responses))
	}
}
