package selfplay

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/parley/internal/dataset"
	"github.com/samcharles93/parley/internal/inference"
	"github.com/samcharles93/parley/internal/logger"
	"github.com/samcharles93/parley/internal/logits"
	"github.com/samcharles93/parley/internal/tokenizer"
	"github.com/samcharles93/parley/internal/toy"
	"github.com/samcharles93/parley/internal/transcript"
)

// Vocab: 10 regular tokens then the 12 specials, ids 10..21.
func testFixtures(t *testing.T) (*tokenizer.Tokenizer, *tokenizer.Specials) {
	t.Helper()
	vocab := "[PAD]\n[UNK]\nhello\nhow\nare\nyou\ndoing\ntoday\n?\n,\n" +
		"<bos>\n<eos>\n<persona>\n<speaker1>\n<speaker2>\n<en>\n<fr>\n<it>\n<id>\n<jp>\n<ko>\n<zh>\n"
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(vocab), 0o644); err != nil {
		t.Fatal(err)
	}
	tok, err := tokenizer.Load(path, true)
	if err != nil {
		t.Fatal(err)
	}
	sp, err := tokenizer.ParseSpecials([]byte(`{
		"<bos>":10,"<eos>":11,"<persona>":12,"<speaker1>":13,"<speaker2>":14,
		"<en>":15,"<fr>":16,"<it>":17,"<id>":18,"<jp>":19,"<ko>":20,"<zh>":21}`))
	if err != nil {
		t.Fatal(err)
	}
	return tok, sp
}

func testRunner(t *testing.T, w *transcript.Writer) *Runner {
	t.Helper()
	tok, sp := testFixtures(t)

	bias := make([]float32, 22)
	bias[2] = 40 // "hello" dominates every step

	engine := &inference.Generator{
		Model:     &toy.LM{Vocab: 22, Bias: bias},
		Sampler:   logits.NewSampler(logits.SamplerConfig{Greedy: true, Temperature: 1}),
		Specials:  sp,
		MaxLength: 4,
		MinLength: 1,
	}

	corpus := &dataset.Corpus{Personalities: map[string][][][]int{
		"En": {{{2, 3}}, {{4, 5}}},
	}}

	return &Runner{
		Engine:    engine,
		Tok:       tok,
		Specials:  sp,
		Corpus:    corpus,
		Writer:    w,
		Rng:       rand.New(rand.NewSource(1)),
		Log:       logger.New(&bytes.Buffer{}, "text", slog.LevelError),
		MaxTurns:  3,
		Exchanges: 4,
	}
}

func TestRunConversationShape(t *testing.T) {
	r := testRunner(t, nil)
	conv, err := r.RunConversation(context.Background(), "<en>")
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Dialog) != 1+r.Exchanges {
		t.Fatalf("expected %d turns, got %d", 1+r.Exchanges, len(conv.Dialog))
	}
	if conv.Dialog[0].Speaker != transcript.SpeakerHuman {
		t.Fatalf("first speaker = %s", conv.Dialog[0].Speaker)
	}
	// Replies alternate model, human_evaluator, model, ...
	for i := 1; i < len(conv.Dialog); i++ {
		want := transcript.SpeakerModel
		if i%2 == 0 {
			want = transcript.SpeakerHuman
		}
		if conv.Dialog[i].Speaker != want {
			t.Fatalf("turn %d speaker = %s, want %s", i, conv.Dialog[i].Speaker, want)
		}
		if conv.Dialog[i].Text == "" {
			t.Fatalf("turn %d is empty", i)
		}
	}
}

func TestRunAppendsTranscripts(t *testing.T) {
	dir := t.TempDir()
	w, err := transcript.Open(dir, "parley_", "En")
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, w)

	if err := r.Run(context.Background(), "<en>", 3); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	f, err := os.Open(w.Path())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var conv transcript.Conversation
		if err := json.Unmarshal(scanner.Bytes(), &conv); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		if conv.Lang != "<en>" {
			t.Fatalf("line %d lang = %s", lines, conv.Lang)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("expected 3 conversations, got %d", lines)
	}
}

func TestRunConversationUnsupportedLanguage(t *testing.T) {
	r := testRunner(t, nil)
	if _, err := r.RunConversation(context.Background(), "<de>"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestRunHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := testRunner(t, nil)
	if err := r.Run(ctx, "<en>", 2); err == nil {
		t.Fatal("expected context error")
	}
}
