package logits

import (
	"math"
	"math/rand"
)

// maxResample bounds how often a draw below the minimum reply length is
// retried when it keeps landing on a banned token.
const maxResample = 64

// SamplerConfig configures the behaviour of a Sampler.
//
// Temperature <= 0 or Greedy selects argmax decoding. TopK <= 0 disables
// top-k filtering, TopP <= 0 or >= 1 disables nucleus filtering.
type SamplerConfig struct {
	Seed        int64
	Temperature float32
	TopK        int
	TopP        float32
	Greedy      bool
}

// Sampler draws token ids from logits vectors with temperature scaling,
// top-k shortlisting and nucleus (top-p) truncation.
type Sampler struct {
	rng    *rand.Rand
	cfg    SamplerConfig
	greedy bool
	topIdx []int
	topVal []float32
	prob   []float64
}

// NewSampler returns a new sampler with the provided configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	greedy := cfg.Greedy || cfg.Temperature <= 0
	if cfg.Temperature <= 0 {
		cfg.Temperature = 1
	}
	if cfg.TopP <= 0 || cfg.TopP > 1 {
		cfg.TopP = 1
	}
	return &Sampler{
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		cfg:    cfg,
		greedy: greedy,
	}
}

// Sample draws a single index from the provided logits vector:
//
//  1. Greedy mode returns argmax.
//  2. Logits are scaled by the inverse temperature and the top k values
//     are shortlisted (k = vocab size when TopK is disabled).
//  3. A numerically stable softmax over the shortlist is computed.
//  4. If TopP < 1 the shortlist is truncated to the smallest prefix whose
//     cumulative probability reaches TopP; the first candidate is always
//     kept.
//  5. A uniform draw selects an index from the truncated distribution.
func (s *Sampler) Sample(logits []float32) int {
	tok, _ := s.SampleConstrained(logits, nil)
	return tok
}

// SampleConstrained draws like Sample but retries while the draw lands on a
// banned token. It reports giving up: when a banned token holds effectively
// all probability mass there is nothing else to draw, the banned token is
// returned and the second result is true. A nil banned function means no
// constraint.
func (s *Sampler) SampleConstrained(logits []float32, banned func(int) bool) (int, bool) {
	if s.greedy {
		tok := argmax(logits)
		if banned == nil || !banned(tok) {
			return tok, false
		}
		// Argmax hit a banned token: fall through to sampling so the
		// constraint can be satisfied.
	}

	invTemp := float32(1.0) / s.cfg.Temperature

	k := s.cfg.TopK
	if k <= 0 || k > len(logits) {
		k = len(logits)
	}

	topIdx, topVal := s.topK(logits, k, invTemp)
	if len(topVal) == 0 {
		return 0, false
	}

	maxv := topVal[0]
	if cap(s.prob) < len(topVal) {
		s.prob = make([]float64, len(topVal))
	}
	prob := s.prob[:len(topVal)]
	var sum float64
	for i := range topVal {
		e := math.Exp(float64(topVal[i] - maxv))
		prob[i] = e
		sum += e
	}
	if sum == 0 {
		return topIdx[0], false
	}
	invSum := 1.0 / sum
	for i := range prob {
		prob[i] *= invSum
	}

	cut := len(prob)
	if s.cfg.TopP < 1 {
		var c float64
		for i := range prob {
			c += prob[i]
			if float32(c) >= s.cfg.TopP {
				cut = i + 1
				break
			}
		}
	}

	for attempt := 0; ; attempt++ {
		tok := s.draw(topIdx, prob, cut)
		if banned == nil || !banned(tok) {
			return tok, false
		}
		// Point mass on a banned token cannot be resampled away.
		if prob[0] >= 0.999 && banned(topIdx[0]) {
			return tok, true
		}
		if attempt >= maxResample {
			return tok, true
		}
	}
}

func (s *Sampler) draw(topIdx []int, prob []float64, cut int) int {
	r := s.rng.Float64()
	var c float64
	for i := 0; i < cut; i++ {
		c += prob[i]
		if r <= c {
			return topIdx[i]
		}
	}
	return topIdx[cut-1]
}

// argmax returns the index of the maximum value in the slice. It panics on
// an empty slice.
func argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}

// topK returns the indices and values of the k largest elements in logits,
// scaled by invTemp and ordered from largest to smallest. O(V*K), fine for
// the small k used in decoding.
func (s *Sampler) topK(logits []float32, k int, invTemp float32) ([]int, []float32) {
	if k <= 0 {
		return nil, nil
	}
	if cap(s.topIdx) < k+1 {
		s.topIdx = make([]int, 0, k+1)
		s.topVal = make([]float32, 0, k+1)
	}
	topIdx := s.topIdx[:0]
	topVal := s.topVal[:0]

	for i, l := range logits {
		v := l * invTemp

		pos := len(topVal)
		for pos > 0 && topVal[pos-1] < v {
			pos--
		}
		if pos >= k {
			continue
		}

		topIdx = append(topIdx, 0)
		topVal = append(topVal, 0)

		copy(topIdx[pos+1:], topIdx[pos:])
		copy(topVal[pos+1:], topVal[pos:])
		topIdx[pos] = i
		topVal[pos] = v

		if len(topVal) > k {
			topIdx = topIdx[:k]
			topVal = topVal[:k]
		}
	}
	s.topIdx = topIdx
	s.topVal = topVal
	return topIdx, topVal
}
