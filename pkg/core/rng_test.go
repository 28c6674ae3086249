package core

import (
	"math"
	"testing"
)

func TestRouletteRespectsWeights(t *testing.T) {
	rng := NewRNG(7)
	values := []int{1, 3, 5}
	weights := []float64{0, 1, 0}
	for i := 0; i < 200; i++ {
		if got := Roulette(rng, values, weights); got != 3 {
			t.Fatalf("draw %d: expected only weighted value 3, got %d", i, got)
		}
	}
}

func TestRouletteUnnormalizedDistribution(t *testing.T) {
	rng := NewRNG(11)
	values := []string{"a", "b"}
	weights := []float64{3, 1}
	counts := map[string]int{}
	const draws = 20000
	for i := 0; i < draws; i++ {
		counts[Roulette(rng, values, weights)]++
	}
	share := float64(counts["a"]) / draws
	if math.Abs(share-0.75) > 0.03 {
		t.Fatalf("expected roughly 75%% a, got %.3f", share)
	}
}

func TestRouletteZeroWeightsFallsBackToUniform(t *testing.T) {
	rng := NewRNG(3)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		seen[Roulette(rng, []int{0, 1, 2}, []float64{0, 0, 0})] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected every value to appear, saw %v", seen)
	}
}

func TestChanceSaturates(t *testing.T) {
	rng := NewRNG(1)
	for i := 0; i < 100; i++ {
		if rng.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !rng.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}

func TestGeometric(t *testing.T) {
	if got := Geometric(1, 0.9); math.Abs(got-0.9) > 1e-12 {
		t.Fatalf("Geometric(1, 0.9) = %f", got)
	}
	if got := Geometric(3, 0.5); math.Abs(got-0.125) > 1e-12 {
		t.Fatalf("Geometric(3, 0.5) = %f", got)
	}
	if got := Geometric(0, 0.5); got != 0 {
		t.Fatalf("Geometric(0, 0.5) = %f, expected 0", got)
	}
}

func TestDeriveIsIndependentOfParentConsumption(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 10; i++ {
		b.Float64()
	}
	da := a.Derive("walker")
	db := b.Derive("walker")
	for i := 0; i < 20; i++ {
		if da.Float64() != db.Float64() {
			t.Fatalf("derived streams diverged at draw %d", i)
		}
	}

	other := NewRNG(42).Derive("finish.noise")
	same := NewRNG(42).Derive("walker")
	equal := true
	for i := 0; i < 8; i++ {
		if other.Float64() != same.Float64() {
			equal = false
		}
	}
	if equal {
		t.Fatal("differently labelled streams should not match")
	}
}

func TestChoiceEmpty(t *testing.T) {
	if got := Choice(NewRNG(1), []int(nil)); got != 0 {
		t.Fatalf("expected zero value, got %d", got)
	}
}
