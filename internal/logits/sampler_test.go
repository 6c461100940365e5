package logits

import "testing"

// TestSamplerDeterminism ensures that two samplers configured identically
// produce identical draws from the same logits vector.
func TestSamplerDeterminism(t *testing.T) {
	logs := []float32{0, 1, 2, 3, 4, 5}
	s1 := NewSampler(SamplerConfig{Seed: 42, Temperature: 0.9, TopK: 4, TopP: 0.95})
	s2 := NewSampler(SamplerConfig{Seed: 42, Temperature: 0.9, TopK: 4, TopP: 0.95})
	for i := 0; i < 20; i++ {
		a := s1.Sample(logs)
		b := s2.Sample(logs)
		if a != b {
			t.Fatalf("draw %d: expected deterministic sample, got %d vs %d", i, a, b)
		}
	}
}

// TestSamplerGreedy tests that greedy mode returns the index of the maximum
// logit regardless of seed.
func TestSamplerGreedy(t *testing.T) {
	logs := []float32{-1, 5, 3, 7, 2}
	s := NewSampler(SamplerConfig{Seed: 99, Temperature: 0.7, TopK: 0, TopP: 0.9, Greedy: true})
	if idx := s.Sample(logs); idx != 3 {
		t.Fatalf("expected greedy index 3, got %d", idx)
	}
}

// TestSamplerZeroTemperatureIsGreedy checks that Temperature<=0 selects
// argmax decoding.
func TestSamplerZeroTemperatureIsGreedy(t *testing.T) {
	logs := []float32{0.1, 0.9, 0.3}
	s := NewSampler(SamplerConfig{Seed: 1, Temperature: 0})
	if idx := s.Sample(logs); idx != 1 {
		t.Fatalf("expected argmax index 1, got %d", idx)
	}
}

// TestSamplerTopP ensures that nucleus truncation restricts sampling to a
// prefix of candidates. The first logit dominates the softmax, so with
// TopP=0.5 only index 0 can ever be drawn.
func TestSamplerTopP(t *testing.T) {
	logs := []float32{10, 0, 0, 0, 0}
	s := NewSampler(SamplerConfig{Seed: 7, Temperature: 1.0, TopK: 5, TopP: 0.5})
	for i := 0; i < 20; i++ {
		if idx := s.Sample(logs); idx != 0 {
			t.Fatalf("nucleus sampling returned unexpected index %d", idx)
		}
	}
}

// TestSamplerTopK ensures tokens outside the top-k shortlist are never drawn.
func TestSamplerTopK(t *testing.T) {
	logs := []float32{5, 4, -10, -10, -10, -10}
	s := NewSampler(SamplerConfig{Seed: 3, Temperature: 1.0, TopK: 2, TopP: 1.0})
	for i := 0; i < 50; i++ {
		idx := s.Sample(logs)
		if idx != 0 && idx != 1 {
			t.Fatalf("top-k sampling returned index %d outside shortlist", idx)
		}
	}
}

// TestSampleConstrainedAvoidsBanned checks that a banned token with
// non-trivial probability is resampled away.
func TestSampleConstrainedAvoidsBanned(t *testing.T) {
	logs := []float32{1, 1, 1, 1}
	s := NewSampler(SamplerConfig{Seed: 11, Temperature: 1.0, TopK: 4, TopP: 1.0})
	banned := func(tok int) bool { return tok == 2 }
	for i := 0; i < 50; i++ {
		tok, gaveUp := s.SampleConstrained(logs, banned)
		if gaveUp {
			t.Fatal("unexpected give-up with uniform distribution")
		}
		if tok == 2 {
			t.Fatalf("draw %d returned banned token", i)
		}
	}
}

// TestSampleConstrainedPointMass checks the give-up path when a banned token
// holds all probability mass.
func TestSampleConstrainedPointMass(t *testing.T) {
	logs := []float32{100, -100, -100}
	s := NewSampler(SamplerConfig{Seed: 5, Temperature: 1.0, TopK: 3, TopP: 1.0})
	banned := func(tok int) bool { return tok == 0 }
	tok, gaveUp := s.SampleConstrained(logs, banned)
	if !gaveUp {
		t.Fatal("expected give-up on point-mass banned token")
	}
	if tok != 0 {
		t.Fatalf("expected banned token 0 returned on give-up, got %d", tok)
	}
}

// TestSampleConstrainedGreedyFallsBack checks that greedy decoding falls back
// to sampling when argmax is banned but alternatives exist.
func TestSampleConstrainedGreedyFallsBack(t *testing.T) {
	logs := []float32{1, 1.1, 1}
	s := NewSampler(SamplerConfig{Seed: 9, Temperature: 0.7, TopK: 3, TopP: 1.0, Greedy: true})
	banned := func(tok int) bool { return tok == 1 }
	for i := 0; i < 20; i++ {
		tok, gaveUp := s.SampleConstrained(logs, banned)
		if gaveUp {
			t.Fatal("unexpected give-up")
		}
		if tok == 1 {
			t.Fatalf("draw %d returned banned argmax token", i)
		}
	}
}
