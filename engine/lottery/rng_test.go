package lottery

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.Float64()
		b := rng2.Float64()
		if a != b {
			t.Fatalf("draw %d: got %v and %v from same seed", i, a, b)
		}
	}
}

func TestRNG_Float64_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		f := rng.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("draw out of range [0,1): got %v", f)
		}
	}
}

func TestRNG_Position_Tracks(t *testing.T) {
	rng := NewRNG(42)

	if rng.Position() != 0 {
		t.Fatalf("expected position 0, got %d", rng.Position())
	}

	rng.Float64()
	if rng.Position() != 1 {
		t.Fatalf("expected position 1, got %d", rng.Position())
	}

	rng.Float64()
	rng.Float64()
	if rng.Position() != 3 {
		t.Fatalf("expected position 3, got %d", rng.Position())
	}
	if rng.Seed() != 42 {
		t.Fatalf("expected seed 42, got %d", rng.Seed())
	}
}

func TestRNG_Restore_MatchesPosition(t *testing.T) {
	// Advance an RNG to position 10 and record the next 5 draws.
	rng := NewRNG(42)
	for i := 0; i < 10; i++ {
		rng.Float64()
	}

	var expected [5]float64
	for i := range expected {
		expected[i] = rng.Float64()
	}

	restored := RestoreRNG(42, 10)
	if restored.Position() != 10 {
		t.Fatalf("expected position 10, got %d", restored.Position())
	}

	for i, want := range expected {
		got := restored.Float64()
		if got != want {
			t.Fatalf("draw %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestRNG_DifferentSeeds_DifferentResults(t *testing.T) {
	rng1 := NewRNG(1)
	rng2 := NewRNG(2)

	differs := false
	for i := 0; i < 20; i++ {
		if rng1.Float64() != rng2.Float64() {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("expected different seeds to produce different results")
	}
}
