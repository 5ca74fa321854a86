package logger

import "testing"

func TestNamedWithNilBase(t *testing.T) {
	log := Named(nil, "store")
	if log == nil {
		t.Fatalf("expected no-op logger")
	}
	log.Info("ignored")
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New("not-a-level")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled at info level")
	}
}
