package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func fileOnly(t *testing.T, level string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "globe.log")
	cfg := FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})
	return path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(data)
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := fileOnly(t, tt.level)

			Debug("mesh packed")
			Info("texture ready")
			Warn("texture slow")
			Error("texture failed")

			content := readLog(t, path)
			for _, exp := range tt.expected {
				if !strings.Contains(content, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(content, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestNamedLoggerTagsComponent(t *testing.T) {
	path := fileOnly(t, "info")

	Named("meshbuf").Info("packed", zap.Int("triangles", 112))

	content := readLog(t, path)
	if !strings.Contains(content, "meshbuf") {
		t.Errorf("expected component name in output, got %q", content)
	}
	if !strings.Contains(content, "triangles") {
		t.Errorf("expected field in output, got %q", content)
	}
}

func TestLoggingBeforeInit(t *testing.T) {
	// The package-level logger must be usable before Init.
	Info("no init yet")
	Named("viewer").Debug("still fine")
	Sync()
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/globe.log")

	if cfg.Path != "/tmp/globe.log" {
		t.Errorf("expected path /tmp/globe.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 {
		t.Errorf("expected MaxSizeMB 20, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 5 {
		t.Errorf("expected MaxBackups 5, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 14 {
		t.Errorf("expected MaxAgeDays 14, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
