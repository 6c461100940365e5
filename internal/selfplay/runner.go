// Package selfplay runs bot-vs-bot conversations and logs their transcripts.
package selfplay

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/samcharles93/parley/internal/dataset"
	"github.com/samcharles93/parley/internal/dialogue"
	"github.com/samcharles93/parley/internal/inference"
	"github.com/samcharles93/parley/internal/logger"
	"github.com/samcharles93/parley/internal/tokenizer"
	"github.com/samcharles93/parley/internal/transcript"
)

// Runner plays two bots with independently sampled personas against each
// other. The conversation opens with a canned starter attributed to the
// human evaluator; replies then alternate between the two personas.
type Runner struct {
	Engine   inference.Engine
	Tok      *tokenizer.Tokenizer
	Specials *tokenizer.Specials
	Corpus   *dataset.Corpus
	Writer   *transcript.Writer
	Rng      *rand.Rand
	Log      logger.Logger

	MaxTurns  int // history window, in utterances
	Exchanges int // model replies per conversation
	Out       io.Writer
}

// Run plays `conversations` rounds in the given language, appending each
// finished conversation to the transcript writer.
func (r *Runner) Run(ctx context.Context, langTag string, conversations int) error {
	for i := 0; i < conversations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		conv, err := r.RunConversation(ctx, langTag)
		if err != nil {
			return fmt.Errorf("conversation %d: %w", i+1, err)
		}
		if r.Writer != nil {
			if err := r.Writer.Append(conv); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunConversation plays a single conversation and returns its transcript.
func (r *Runner) RunConversation(ctx context.Context, langTag string) (*transcript.Conversation, error) {
	langID, ok := r.Specials.LangID(langTag)
	if !ok {
		return nil, fmt.Errorf("unsupported language %s", langTag)
	}

	persona1, err := r.Corpus.SamplePersona(r.Rng, langTag)
	if err != nil {
		return nil, err
	}
	persona2, err := r.Corpus.SamplePersona(r.Rng, langTag)
	if err != nil {
		return nil, err
	}
	r.logPersona("bot 1", persona1, langTag)
	r.logPersona("bot 2", persona2, langTag)

	starter, err := dataset.Starter(r.Rng, langTag)
	if err != nil {
		return nil, err
	}
	r.print(starter)

	conv := transcript.NewConversation(langTag)
	conv.Add(transcript.SpeakerHuman, starter)

	history := dialogue.NewHistory(r.MaxTurns)
	history.Append(r.Tok.Encode(starter))

	cjk := dataset.IsCJK(langTag)
	for i := 0; i < r.Exchanges; i++ {
		persona := persona2
		speaker := transcript.SpeakerModel
		if i%2 == 1 {
			persona = persona1
			speaker = transcript.SpeakerHuman
		}

		reply, _, err := r.Engine.SampleSequence(ctx, persona, history.Turns(), langID)
		if err != nil {
			return nil, err
		}
		history.Append(reply)

		text := dialogue.RenderReply(r.Tok, r.Specials, reply, cjk)
		r.print(text)
		conv.Add(speaker, text)
	}
	return conv, nil
}

func (r *Runner) logPersona(name string, persona [][]int, langTag string) {
	if r.Log == nil {
		return
	}
	flat := make([]int, 0, 64)
	for _, sent := range persona {
		flat = append(flat, sent...)
	}
	r.Log.Info("sampled persona",
		"bot", name,
		"persona", dialogue.RenderReply(r.Tok, r.Specials, flat, dataset.IsCJK(langTag)))
}

func (r *Runner) print(text string) {
	if r.Out != nil {
		_, _ = fmt.Fprintln(r.Out, text)
	}
}
