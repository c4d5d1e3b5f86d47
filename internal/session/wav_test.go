package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes one second of 16 kHz mono silence
func writeWAV(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           make([]int, 16000),
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestLoadAudioFile_WAVFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.wav")
	writeWAV(t, path)

	file, err := LoadAudioFile(path)
	if err != nil {
		t.Fatalf("LoadAudioFile() error = %v", err)
	}
	if file.Format == nil {
		t.Fatal("expected WAV format to be detected")
	}
	if file.Format.SampleRate != 16000 || file.Format.Channels != 1 || file.Format.BitDepth != 16 {
		t.Errorf("unexpected format %+v", file.Format)
	}
	if d := file.Duration(); d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("Duration() = %v, want about 1s", d)
	}
}

func TestProbeWAV_NotWAV(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("ID3 mp3 payload"),
		[]byte("RIFF0000AVI LIST"),
	} {
		if got := probeWAV(data); got != nil {
			t.Errorf("probeWAV(%q) = %+v, want nil", data, got)
		}
	}

	var none *AudioFile
	if none.Duration() != 0 {
		t.Error("nil file should have zero duration")
	}
}
