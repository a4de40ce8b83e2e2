package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "lembar.log")

	cfg := DefaultConfig()
	cfg.File = file
	cfg.Stderr = &console

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Named("orchestrator").Info("assessment complete", zap.Int("questions", 3))
	logger.Debug("hidden")
	_ = logger.Sync()

	if !strings.Contains(console.String(), "assessment complete") {
		t.Errorf("console output missing message: %q", console.String())
	}
	if strings.Contains(console.String(), "hidden") {
		t.Error("debug message logged at info level")
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &entry); err != nil {
		t.Fatalf("file log is not JSON: %v\n%s", err, raw)
	}
	if entry["logger"] != "orchestrator" || entry["questions"] != float64(3) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_NothingEnabled(t *testing.T) {
	logger, err := New(Config{Level: "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Error("dropped")
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud", Console: true}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
