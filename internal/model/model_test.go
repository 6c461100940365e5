package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/parley/internal/dialogue"
)

var testCfg = Config{VocabSize: 32, HiddenSize: 8, MaxPositions: 16}

func testInstance() dialogue.Instance {
	return dialogue.Instance{
		InputIDs:        []int{1, 2, 3, 4},
		TokenTypeIDs:    []int{5, 5, 6, 6},
		DecoderInputIDs: []int{7, 8},
		LangID:          9,
	}
}

func TestForwardDeterministic(t *testing.T) {
	m, err := NewRandom(testCfg, 42)
	if err != nil {
		t.Fatal(err)
	}
	a, err := m.Forward(testInstance())
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Forward(testInstance())
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != testCfg.VocabSize {
		t.Fatalf("logits length %d, want %d", len(a), testCfg.VocabSize)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("logit %d differs between identical forwards", i)
		}
	}
}

func TestForwardValidation(t *testing.T) {
	m, err := NewRandom(testCfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		inst dialogue.Instance
	}{
		{"misaligned types", dialogue.Instance{InputIDs: []int{1, 2}, TokenTypeIDs: []int{1}, DecoderInputIDs: []int{1}, LangID: 1}},
		{"empty decoder", dialogue.Instance{InputIDs: []int{1}, TokenTypeIDs: []int{1}, LangID: 1}},
		{"encoder id out of vocab", dialogue.Instance{InputIDs: []int{99}, TokenTypeIDs: []int{1}, DecoderInputIDs: []int{1}, LangID: 1}},
		{"decoder id out of vocab", dialogue.Instance{InputIDs: []int{1}, TokenTypeIDs: []int{1}, DecoderInputIDs: []int{-2}, LangID: 1}},
		{"lang id out of vocab", dialogue.Instance{InputIDs: []int{1}, TokenTypeIDs: []int{1}, DecoderInputIDs: []int{1}, LangID: 99}},
	}
	for _, tc := range cases {
		if _, err := m.Forward(tc.inst); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestForwardLongInputSharesLastPosition(t *testing.T) {
	m, err := NewRandom(testCfg, 3)
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]int, testCfg.MaxPositions+10)
	types := make([]int, len(ids))
	for i := range ids {
		ids[i] = i % testCfg.VocabSize
		types[i] = 1
	}
	inst := dialogue.Instance{InputIDs: ids, TokenTypeIDs: types, DecoderInputIDs: []int{1}, LangID: 2}
	if _, err := m.Forward(inst); err != nil {
		t.Fatalf("long input: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	m, err := NewRandom(testCfg, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Config() != testCfg {
		t.Fatalf("config round trip: %+v", loaded.Config())
	}

	want, err := m.Forward(testInstance())
	if err != nil {
		t.Fatal(err)
	}
	got, err := loaded.Forward(testInstance())
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("logit %d changed across save/load", i)
		}
	}
}

func TestLoadRejectsShapeMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	m, err := NewRandom(testCfg, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Save(dir); err != nil {
		t.Fatal(err)
	}

	// Rewrite config.json with a different hidden size.
	bad := []byte(`{"vocab_size":32,"hidden_size":4,"max_position_embeddings":16}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), bad, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestLoadRejectsTrailingData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	m, err := NewRandom(testCfg, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Save(dir); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(filepath.Join(dir, weightsFile), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte{0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	if _, err := Load(dir); err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestLoadMissingCheckpoint(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing checkpoint")
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{VocabSize: 0, HiddenSize: 8, MaxPositions: 4},
		{VocabSize: 8, HiddenSize: 0, MaxPositions: 4},
		{VocabSize: 8, HiddenSize: 8, MaxPositions: 0},
	}
	for _, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}
