// Package speech synthesizes utterance audio. The Piper implementation
// shells out to a local piper process and returns WAV audio as base64;
// synthesis failures are per-utterance and non-fatal, replies still go
// out as text.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Synthesizer converts text to base64-encoded WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// PiperConfig configures the Piper synthesizer.
type PiperConfig struct {
	// Voice is the Piper voice model name, without extension.
	Voice string

	// VoicesDir holds the .onnx voice models.
	VoicesDir string

	// WorkDir receives the generated WAV files.
	WorkDir string
}

// DefaultVoice matches the original setup.
const DefaultVoice = "en_GB-alba-medium"

// Piper runs a local piper process per utterance.
type Piper struct {
	cfg PiperConfig
}

// NewPiper creates a Piper synthesizer.
func NewPiper(cfg PiperConfig) *Piper {
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Piper{cfg: cfg}
}

// Synthesize renders text to WAV via piper and returns it base64
// encoded.
func (p *Piper) Synthesize(ctx context.Context, text string) (string, error) {
	modelPath := filepath.Join(p.cfg.VoicesDir, p.cfg.Voice+".onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return "", fmt.Errorf("voice model not found: %s", modelPath)
	}

	// Unique per call so concurrent turns never clobber each other's output.
	outPath := filepath.Join(p.cfg.WorkDir, "utterance_"+uuid.New().String()+".wav")

	cmd := exec.CommandContext(ctx, "piper",
		"--model", modelPath,
		"--output_file", outPath,
	)
	cmd.Stdin = strings.NewReader(flatten(text))
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("piper failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	defer os.Remove(outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("read synthesized audio: %w", err)
	}
	log.Printf("[SPEECH] Synthesized %d bytes of audio", len(data))
	return base64.StdEncoding.EncodeToString(data), nil
}

// Voices lists the available voice model names in the voices directory.
func (p *Piper) Voices() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.VoicesDir)
	if err != nil {
		return nil, fmt.Errorf("read voices dir: %w", err)
	}
	var voices []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".onnx") {
			voices = append(voices, strings.TrimSuffix(name, ".onnx"))
		}
	}
	return voices, nil
}

func flatten(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}
