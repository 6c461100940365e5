// Package transcript logs self-play conversations as append-only JSON lines,
// one conversation object per line.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Speaker labels as downstream evaluation tooling expects them.
const (
	SpeakerHuman = "human_evaluator"
	SpeakerModel = "model"
)

// Turn is one utterance of a logged conversation.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Conversation is one self-play dialogue.
type Conversation struct {
	ID     string `json:"id"`
	Lang   string `json:"lang"`
	Dialog []Turn `json:"dialog"`
}

// NewConversation starts a conversation with a fresh UUID.
func NewConversation(lang string) *Conversation {
	return &Conversation{ID: uuid.NewString(), Lang: lang}
}

// Add appends a turn.
func (c *Conversation) Add(speaker, text string) {
	c.Dialog = append(c.Dialog, Turn{Speaker: speaker, Text: text})
}

// Writer appends conversations to <dir>/<prefix><langName>_output.jsonl.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open creates dir if needed and opens the transcript file for appending.
func Open(dir, prefix, langName string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	path := filepath.Join(dir, prefix+langName+"_output.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return &Writer{f: f, path: path}, nil
}

// Path returns the transcript file path.
func (w *Writer) Path() string { return w.path }

// Append writes one conversation as a single JSON line.
func (w *Writer) Append(c *Conversation) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	raw = append(raw, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.Write(raw); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error { return w.f.Close() }
