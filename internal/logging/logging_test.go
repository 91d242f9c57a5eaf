package logging

import "testing"

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "json", "api"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_Console(t *testing.T) {
	logger, err := New("debug", "console", "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Fatalf("expected debug enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
}
