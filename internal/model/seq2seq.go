// Package model implements a small deterministic encoder-decoder scorer
// with a flat binary checkpoint format. It stands in for the pretrained
// network behind the dialogue loops; the inference.Engine interface keeps
// callers independent of it.
package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samcharles93/parley/internal/dialogue"
)

// Seq2Seq scores next-token logits for a decoder position given encoder
// input ids, aligned token type ids, a partial reply and a language id.
//
// The encoder pools token, type and position embeddings over the input;
// the decoder pools its own ids plus the language embedding, combines both
// through a tanh projection and scores the vocabulary with tied token
// embeddings plus a bias.
type Seq2Seq struct {
	cfg Config

	tokEmb []float32 // [VocabSize x HiddenSize], tied input/output
	posEmb []float32 // [MaxPositions x HiddenSize]
	proj   []float32 // [HiddenSize x HiddenSize]
	bias   []float32 // [VocabSize]
}

// New returns a zero-weight model of the given shape.
func New(cfg Config) (*Seq2Seq, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Seq2Seq{
		cfg:    cfg,
		tokEmb: make([]float32, cfg.VocabSize*cfg.HiddenSize),
		posEmb: make([]float32, cfg.MaxPositions*cfg.HiddenSize),
		proj:   make([]float32, cfg.HiddenSize*cfg.HiddenSize),
		bias:   make([]float32, cfg.VocabSize),
	}, nil
}

// NewRandom returns a model with weights drawn deterministically from seed,
// scaled down so logits stay in a sane range. Used by tests and fixtures.
func NewRandom(cfg Config, seed int64) (*Seq2Seq, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	scale := float32(1.0 / math.Sqrt(float64(cfg.HiddenSize)))
	fill := func(w []float32) {
		for i := range w {
			w[i] = (rng.Float32()*2 - 1) * scale
		}
	}
	fill(m.tokEmb)
	fill(m.posEmb)
	fill(m.proj)
	fill(m.bias)
	return m, nil
}

// Config returns the model shape.
func (m *Seq2Seq) Config() Config { return m.cfg }

// Forward computes logits over the vocabulary for the next decoder position.
// Every id in the instance must be inside the vocabulary; positions past
// MaxPositions share the last position embedding so long conversations keep
// working.
func (m *Seq2Seq) Forward(inst dialogue.Instance) ([]float32, error) {
	if len(inst.InputIDs) != len(inst.TokenTypeIDs) {
		return nil, fmt.Errorf("forward: %d input ids but %d token type ids",
			len(inst.InputIDs), len(inst.TokenTypeIDs))
	}
	if len(inst.DecoderInputIDs) == 0 {
		return nil, fmt.Errorf("forward: empty decoder input")
	}
	if inst.LangID < 0 || inst.LangID >= m.cfg.VocabSize {
		return nil, fmt.Errorf("forward: language id %d outside vocab", inst.LangID)
	}

	h := m.cfg.HiddenSize
	enc := make([]float32, h)
	for pos, id := range inst.InputIDs {
		if id < 0 || id >= m.cfg.VocabSize {
			return nil, fmt.Errorf("forward: encoder id %d outside vocab", id)
		}
		typ := inst.TokenTypeIDs[pos]
		if typ < 0 || typ >= m.cfg.VocabSize {
			return nil, fmt.Errorf("forward: token type id %d outside vocab", typ)
		}
		tok := m.tokEmb[id*h : (id+1)*h]
		tty := m.tokEmb[typ*h : (typ+1)*h]
		pemb := m.position(pos)
		for i := 0; i < h; i++ {
			enc[i] += tok[i] + tty[i] + pemb[i]
		}
	}
	if n := len(inst.InputIDs); n > 0 {
		inv := 1 / float32(n)
		for i := range enc {
			enc[i] *= inv
		}
	}

	dec := make([]float32, h)
	lang := m.tokEmb[inst.LangID*h : (inst.LangID+1)*h]
	for pos, id := range inst.DecoderInputIDs {
		if id < 0 || id >= m.cfg.VocabSize {
			return nil, fmt.Errorf("forward: decoder id %d outside vocab", id)
		}
		tok := m.tokEmb[id*h : (id+1)*h]
		pemb := m.position(pos)
		for i := 0; i < h; i++ {
			dec[i] += tok[i] + lang[i] + pemb[i]
		}
	}
	inv := 1 / float32(len(inst.DecoderInputIDs))
	for i := range dec {
		dec[i] = dec[i]*inv + enc[i]
	}

	// state = tanh(proj * dec)
	state := make([]float32, h)
	for i := 0; i < h; i++ {
		row := m.proj[i*h : (i+1)*h]
		var sum float32
		for j := 0; j < h; j++ {
			sum += row[j] * dec[j]
		}
		state[i] = float32(math.Tanh(float64(sum)))
	}

	// logits = tokEmb * state + bias
	logits := make([]float32, m.cfg.VocabSize)
	for v := 0; v < m.cfg.VocabSize; v++ {
		row := m.tokEmb[v*h : (v+1)*h]
		var sum float32
		for i := 0; i < h; i++ {
			sum += row[i] * state[i]
		}
		logits[v] = sum + m.bias[v]
	}
	return logits, nil
}

func (m *Seq2Seq) position(pos int) []float32 {
	if pos >= m.cfg.MaxPositions {
		pos = m.cfg.MaxPositions - 1
	}
	h := m.cfg.HiddenSize
	return m.posEmb[pos*h : (pos+1)*h]
}
