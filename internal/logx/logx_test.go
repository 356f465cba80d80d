package logx

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefaultsToInfoOnInvalidLevel(t *testing.T) {
	log := New("not-a-level", "json")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("GetLevel() = %v, want InfoLevel for invalid input", log.GetLevel())
	}
}

func TestNewParsesKnownLevel(t *testing.T) {
	log := New("debug", "json")
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("GetLevel() = %v, want DebugLevel", log.GetLevel())
	}
}

func TestNewConsoleFormatDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("New() with console format panicked: %v", r)
		}
	}()
	log := New("warn", "console")
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("GetLevel() = %v, want WarnLevel", log.GetLevel())
	}
}
