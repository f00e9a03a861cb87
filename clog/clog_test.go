package clog

import (
	"testing"
)

func TestParseLevel_Unit(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"", InfoLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigValidate_Unit(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		cfg := &Config{}
		if err := cfg.validate(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
			t.Errorf("Unexpected defaults: %+v", cfg)
		}
	})

	t.Run("invalid format rejected", func(t *testing.T) {
		cfg := &Config{Format: "xml"}
		if err := cfg.validate(); err == nil {
			t.Error("Expected error for invalid format")
		}
	})
}

func TestDiscard_Unit(t *testing.T) {
	logger := Discard()
	// 静默 Logger 不应 panic
	logger.Info("ignored", String("k", "v"))
	logger.Error("ignored", Error(nil))
	if logger.With(Int("n", 1)) == nil {
		t.Error("Expected With to return a logger")
	}
}

func TestWith_Unit(t *testing.T) {
	logger, err := New(&Config{Level: "debug", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	child := logger.With(String("component", "test"))
	if child == nil {
		t.Fatal("Expected child logger")
	}
	child.Debug("child message", Int64("id", 42))

	if err := logger.SetLevel(ErrorLevel); err != nil {
		t.Errorf("SetLevel failed: %v", err)
	}
}
