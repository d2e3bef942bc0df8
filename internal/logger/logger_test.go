package logger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/testgenius/backend/internal/logger"
)

func TestSetup_AppliesLevel(t *testing.T) {
	logger.Setup("warn", "json")
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("expected warn level, got %s", zerolog.GlobalLevel())
	}
}

func TestSetup_FallsBackToInfoOnBadLevel(t *testing.T) {
	logger.Setup("verbose", "json")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %s", zerolog.GlobalLevel())
	}
}
