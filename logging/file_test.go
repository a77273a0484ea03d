package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileWriterAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	fw, err := NewFileWriter(dir, "site.log", 0, 0)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	logger := New("gbpl-site", INFO, fw)
	logger.Info("server", "listening", nil)
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(fw.Path())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"listening"`) {
		t.Fatalf("log file missing entry: %s", data)
	}
	if _, err := fw.Write([]byte("late")); err == nil {
		t.Fatalf("write after close should fail")
	}
}

func TestFileWriterRotatesDaily(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(dir, "site.log", 1, 2)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	clock := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	fw.now = func() time.Time { return clock }
	fw.lastRotation = clock

	if _, err := fw.Write([]byte("day one\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	for i := 0; i < 3; i++ {
		clock = clock.Add(25 * time.Hour)
		if _, err := fw.Write([]byte("next day\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	archives, err := filepath.Glob(filepath.Join(dir, "site.log.*.gz"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(archives) != 2 {
		t.Fatalf("expected 2 retained archives, got %v", archives)
	}
	data, err := os.ReadFile(fw.Path())
	if err != nil {
		t.Fatalf("read active log: %v", err)
	}
	if string(data) != "next day\n" {
		t.Fatalf("active log = %q", data)
	}
}
