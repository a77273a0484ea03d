package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPLoggerRecordsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := New("gbpl-site", INFO, &buf)

	var seenID string
	handler := NewHTTPLogger(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/network?hub=uk", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seenID == "" || rec.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seenID, rec.Header().Get(RequestIDHeader))
	}

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Category != "http" || entry.Level != "INFO" || entry.RequestID != seenID {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Fields["path"] != "/network" || entry.Fields["query"] != "hub=uk" {
		t.Fatalf("fields = %+v", entry.Fields)
	}
	if status, _ := entry.Fields["status"].(float64); status != http.StatusOK {
		t.Fatalf("status = %v", entry.Fields["status"])
	}
	if size, _ := entry.Fields["size"].(float64); size != 5 {
		t.Fatalf("size = %v", entry.Fields["size"])
	}
	if entry.Duration == nil {
		t.Fatalf("expected duration")
	}
}

func TestHTTPLoggerReusesIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	handler := NewHTTPLogger(New("gbpl-site", INFO, &buf)).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "edge-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "edge-42" {
		t.Fatalf("request id = %q", got)
	}
}

func TestHTTPLoggerEscalatesLevelByStatus(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusMethodNotAllowed, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		handler := NewHTTPLogger(New("gbpl-site", DEBUG, &buf)).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		entries := decodeEntries(t, &buf)
		if len(entries) != 1 || entries[0].Level != tc.level {
			t.Fatalf("status %d: unexpected entries %+v", tc.status, entries)
		}
	}
}

func TestHTTPLoggerWithNilLoggerStillServes(t *testing.T) {
	handler := NewHTTPLogger(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}
