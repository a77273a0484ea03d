package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New("gbpl-site", INFO, &buf)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	logger.now = func() time.Time { return fixed }

	logger.Info("maps", "loader ready", map[string]any{"state": "ready"})
	logger.Error("maps", "script failed", errors.New("network"), nil)

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0]
	if first.Level != "INFO" || first.Category != "maps" || first.Service != "gbpl-site" {
		t.Fatalf("unexpected entry %+v", first)
	}
	if !first.Timestamp.Equal(fixed) {
		t.Fatalf("timestamp = %v", first.Timestamp)
	}
	if first.Fields["state"] != "ready" {
		t.Fatalf("fields = %+v", first.Fields)
	}
	if entries[1].Level != "ERROR" || entries[1].Error != "network" {
		t.Fatalf("unexpected error entry %+v", entries[1])
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("gbpl-site", WARN, &buf)
	logger.Debug("ui", "hidden", nil)
	logger.Info("ui", "hidden", nil)
	logger.Warn("ui", "shown", nil)

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 || entries[0].Message != "shown" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var logger *Logger
	logger.Info("ui", "ignored", nil)
	logger.Error("ui", "ignored", errors.New("boom"), nil)
	logger.AddWriter(&bytes.Buffer{})
	logger.WithRequestID("abc").WithCategory("ui").Info("ignored")
	if logger.Enabled(FATAL) {
		t.Fatalf("nil logger should report nothing enabled")
	}
	if logger.Service() != "" {
		t.Fatalf("nil logger has no service")
	}
}

func TestLogContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("gbpl-site", INFO, &buf)
	logger.WithRequestID("req-1").WithCategory("render").WithField("page", "home").Warn("slow render")

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.RequestID != "req-1" || entry.Category != "render" || entry.Level != "WARN" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Fields["page"] != "home" {
		t.Fatalf("fields = %+v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DEBUG,
		" WARN ":  WARN,
		"warning": WARN,
		"error":   ERROR,
		"fatal":   FATAL,
		"":        INFO,
		"verbose": INFO,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
