package speech_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/speech"
)

func TestVoices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"en_GB-alba-medium.onnx", "en_US-amy-low.onnx", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := speech.NewPiper(speech.PiperConfig{VoicesDir: dir})
	voices, err := p.Voices()
	if err != nil {
		t.Fatalf("voices failed: %v", err)
	}
	sort.Strings(voices)
	if len(voices) != 2 || voices[0] != "en_GB-alba-medium" || voices[1] != "en_US-amy-low" {
		t.Errorf("unexpected voices: %v", voices)
	}
}

func TestVoices_MissingDir(t *testing.T) {
	p := speech.NewPiper(speech.PiperConfig{VoicesDir: filepath.Join(t.TempDir(), "absent")})
	if _, err := p.Voices(); err == nil {
		t.Error("missing voices dir should error")
	}
}

func TestSynthesize_MissingModel(t *testing.T) {
	p := speech.NewPiper(speech.PiperConfig{VoicesDir: t.TempDir(), Voice: "nope"})
	if _, err := p.Synthesize(context.Background(), "hello"); err == nil {
		t.Error("missing voice model should error before running piper")
	}
}
