package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"debug":   zapcore.DebugLevel,
		"trace":   zapcore.DebugLevel,
		"bogus":   zapcore.InfoLevel,
		" debug ": zapcore.DebugLevel,
	}
	for input, want := range cases {
		if got := levelFromEnv(input); got != want {
			t.Errorf("levelFromEnv(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewBuildsLogger(t *testing.T) {
	t.Setenv("TERRASRV_LOG", "debug")
	logger, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Sync()
}
