package logger

import (
	"os"
	"strings"
	"testing"

	"palletkiosk/internal/config"
)

func TestLogger_WritesLevelFiles(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(&config.Config{LogDirectory: dir})
	defer l.Close()

	l.Info("accepted %s", "PALLET-001")
	l.Warning("stream lost")

	data, err := os.ReadFile(l.Path("info"))
	if err != nil {
		t.Fatalf("Failed to read info log: %v", err)
	}
	if !strings.Contains(string(data), "accepted PALLET-001") {
		t.Errorf("Info log missing entry: %q", data)
	}

	data, err = os.ReadFile(l.Path("warning"))
	if err != nil {
		t.Fatalf("Failed to read warning log: %v", err)
	}
	if !strings.Contains(string(data), "stream lost") {
		t.Errorf("Warning log missing entry: %q", data)
	}
}

func TestLogger_CleanLogs(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(&config.Config{LogDirectory: dir})
	defer l.Close()

	l.Error("decoder failed")
	if err := l.CleanLogs("error"); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}

	info, err := os.Stat(l.Path("error"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Expected empty error log, got %d bytes", info.Size())
	}
}

func TestLogger_DiscardHasNoFiles(t *testing.T) {
	l := NewDiscard()
	l.Info("ignored")

	if l.Path("info") != "" {
		t.Errorf("Expected no file path, got %q", l.Path("info"))
	}
	if err := l.CleanLogs("info"); err != nil {
		t.Errorf("CleanLogs on discard logger should be a no-op, got %v", err)
	}
}
