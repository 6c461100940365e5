// Package toy provides a minimal deterministic Model implementation for
// exercising the decoding loop in tests.
package toy

import (
	"fmt"
	"math"

	"github.com/samcharles93/parley/internal/dialogue"
)

// LM scores logits from a cheap deterministic mix of the instance contents.
// Bias, when set, is added to every step's logits so tests can steer the
// distribution toward chosen tokens.
type LM struct {
	Vocab int
	Bias  []float32
}

// Forward computes deterministic pseudo-logits for the next decoder position.
func (m *LM) Forward(inst dialogue.Instance) ([]float32, error) {
	if m.Vocab <= 0 {
		return nil, fmt.Errorf("toy: vocab size %d", m.Vocab)
	}
	if len(inst.InputIDs) != len(inst.TokenTypeIDs) {
		return nil, fmt.Errorf("toy: misaligned token type ids")
	}

	mix := inst.LangID
	for _, id := range inst.InputIDs {
		mix = mix*31 + id
	}
	for _, id := range inst.TokenTypeIDs {
		mix = mix*17 + id
	}
	for _, id := range inst.DecoderInputIDs {
		mix = mix*13 + id
	}

	logits := make([]float32, m.Vocab)
	for v := range logits {
		logits[v] = float32(math.Sin(float64(mix%997)+float64(v))) * 0.1
		if v < len(m.Bias) {
			logits[v] += m.Bias[v]
		}
	}
	return logits, nil
}
