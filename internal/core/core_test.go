package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type stubSim struct{ seed int64 }

func (s *stubSim) Name() string     { return "stub" }
func (s *stubSim) Size() Size       { return Size{W: 2, H: 2} }
func (s *stubSim) Reset(seed int64) { s.seed = seed }
func (s *stubSim) Step()            {}
func (s *stubSim) Cells() []uint8   { return make([]uint8, 4) }

func TestLookupBuildsRegisteredSim(t *testing.T) {
	Register("stub", func(map[string]string) (Sim, error) { return &stubSim{}, nil })
	sim, err := Lookup("stub", nil)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if sim.Name() != "stub" {
		t.Fatalf("expected stub sim, got %q", sim.Name())
	}

	_, err = Lookup("missing", nil)
	if err == nil || !strings.Contains(err.Error(), "stub") {
		t.Fatalf("expected unknown sim error listing registered names, got %v", err)
	}
}

func TestConfigErrorWrapsInvalidConfig(t *testing.T) {
	var err error = &ConfigError{Scope: "walker", Field: "waypoints", Reason: "empty"}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatal("config error should wrap ErrInvalidConfig")
	}
	if got := err.Error(); got != "walker config waypoints: empty" {
		t.Fatalf("unexpected message %q", got)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "waypoints" {
		t.Fatalf("errors.As failed: %v", err)
	}
}

func TestByteGridCloneIsIndependent(t *testing.T) {
	g := NewByteGrid(3, 2)
	g.Set(1, 1, 5)
	c := g.Clone()
	c.Set(1, 1, 7)
	if g.At(1, 1) != 5 {
		t.Fatalf("clone shares storage with original")
	}
	if g.InBounds(3, 0) || !g.InBounds(2, 1) {
		t.Fatal("unexpected bounds check")
	}
	g.Fill(1)
	if n := g.Count(1); n != 6 {
		t.Fatalf("expected 6 filled cells, got %d", n)
	}
}

func TestFixedStepWaitsForInterval(t *testing.T) {
	fs := NewFixedStep(1000)
	if !fs.ShouldStep() {
		t.Fatal("first call should step immediately")
	}
	fs.SetTPS(1)
	if fs.ShouldStep() {
		t.Fatal("no second tick expected within one second")
	}
	fs.SetTPS(1000)
	time.Sleep(5 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("expected a tick after the interval elapsed")
	}
}
