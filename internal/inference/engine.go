// Package inference runs the autoregressive decoding loop over a
// sequence-to-sequence scorer.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/parley/internal/dialogue"
	"github.com/samcharles93/parley/internal/logger"
	"github.com/samcharles93/parley/internal/logits"
	"github.com/samcharles93/parley/internal/tokenizer"
)

// Model scores next-token logits for an assembled instance.
type Model interface {
	Forward(inst dialogue.Instance) ([]float32, error)
}

// Stats summarises one generated reply.
type Stats struct {
	TokensGenerated int
	Duration        time.Duration
	TPS             float64
}

// Engine produces one reply at a time, conditioned on persona and history.
type Engine interface {
	SampleSequence(ctx context.Context, persona, history [][]int, langID int) ([]int, Stats, error)
	Close() error
}

// Generator is the Engine over a local Model. Each decoding step rebuilds
// the instance with the partial reply, scores it, and samples the next
// token. Below MinLength, special tokens are resampled away; any special
// token drawn at or past MinLength ends the reply.
type Generator struct {
	Model     Model
	Sampler   *logits.Sampler
	Specials  *tokenizer.Specials
	MaxLength int
	MinLength int
	Log       logger.Logger
}

// SampleSequence decodes a single reply as token ids (specials excluded).
func (g *Generator) SampleSequence(ctx context.Context, persona, history [][]int, langID int) ([]int, Stats, error) {
	var stats Stats
	if g.MaxLength <= 0 {
		return nil, stats, fmt.Errorf("sample sequence: max length %d", g.MaxLength)
	}

	start := time.Now()
	reply := make([]int, 0, g.MaxLength)

	for i := 0; i < g.MaxLength; i++ {
		if err := ctx.Err(); err != nil {
			return reply, stats, err
		}

		inst := dialogue.BuildInstance(persona, history, reply, g.Specials, langID, false)
		vec, err := g.Model.Forward(inst)
		if err != nil {
			return reply, stats, fmt.Errorf("forward at step %d: %w", i, err)
		}

		var next int
		if i < g.MinLength {
			tok, gaveUp := g.Sampler.SampleConstrained(vec, g.Specials.IsSpecial)
			if gaveUp {
				if g.Log != nil {
					g.Log.Warn("model generating special token with probability 1")
				}
				break
			}
			next = tok
		} else {
			next = g.Sampler.Sample(vec)
		}

		if g.Specials.IsSpecial(next) {
			break
		}
		reply = append(reply, next)
		stats.TokensGenerated++
	}

	stats.Duration = time.Since(start)
	if secs := stats.Duration.Seconds(); secs > 0 {
		stats.TPS = float64(stats.TokensGenerated) / secs
	}
	return reply, stats, nil
}

// Close implements Engine. A Generator holds no external resources.
func (g *Generator) Close() error { return nil }
