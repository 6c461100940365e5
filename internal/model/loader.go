package model

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// model.bin layout: magic, then vocab/hidden/max-position sizes as int32,
// then the weight tensors as little-endian float32 in declaration order
// (token embeddings, position embeddings, projection, bias).
const weightsMagic uint32 = 0x31594C50 // "PLY1"

const weightsFile = "model.bin"

// Load reads a checkpoint directory (config.json + model.bin).
func Load(dir string) (*Seq2Seq, error) {
	cfg, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, weightsFile))
	if err != nil {
		return nil, fmt.Errorf("open weights: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReaderSize(f, 1<<20)

	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("read weights header: %w", err)
	}
	if magic != weightsMagic {
		return nil, fmt.Errorf("weights: bad magic %#x", magic)
	}

	var shape [3]int32
	if err := binary.Read(r, binary.LittleEndian, &shape); err != nil {
		return nil, fmt.Errorf("read weights shape: %w", err)
	}
	if int(shape[0]) != cfg.VocabSize || int(shape[1]) != cfg.HiddenSize || int(shape[2]) != cfg.MaxPositions {
		return nil, fmt.Errorf("weights shape %dx%dx%d does not match config %dx%dx%d",
			shape[0], shape[1], shape[2], cfg.VocabSize, cfg.HiddenSize, cfg.MaxPositions)
	}

	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range [][]float32{m.tokEmb, m.posEmb, m.proj, m.bias} {
		if err := binary.Read(r, binary.LittleEndian, w); err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}
	}

	// The file must hold exactly paramCount floats, nothing more.
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("weights: trailing data after %d parameters", cfg.paramCount())
	}
	return m, nil
}

// Save writes config.json and model.bin into dir, creating it if needed.
func (m *Seq2Seq) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	cfgRaw, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), cfgRaw, 0o644); err != nil {
		return fmt.Errorf("write config.json: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, weightsFile))
	if err != nil {
		return fmt.Errorf("create weights: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriterSize(f, 1<<20)
	if err := binary.Write(w, binary.LittleEndian, weightsMagic); err != nil {
		return fmt.Errorf("write weights header: %w", err)
	}
	shape := [3]int32{int32(m.cfg.VocabSize), int32(m.cfg.HiddenSize), int32(m.cfg.MaxPositions)}
	if err := binary.Write(w, binary.LittleEndian, shape); err != nil {
		return fmt.Errorf("write weights shape: %w", err)
	}
	for _, t := range [][]float32{m.tokEmb, m.posEmb, m.proj, m.bias} {
		if err := binary.Write(w, binary.LittleEndian, t); err != nil {
			return fmt.Errorf("write weights: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush weights: %w", err)
	}
	return f.Close()
}
