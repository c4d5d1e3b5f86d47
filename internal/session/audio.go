package session

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AudioFile is an in-memory recording selected for submission
type AudioFile struct {
	Name     string
	MIMEType string
	Data     []byte
	Format   *AudioFormat // nil unless the payload is a readable WAV
}

// NewAudioFile wraps raw bytes; an empty MIME type is inferred from the name
// and then from the content.
func NewAudioFile(name, mimeType string, data []byte) *AudioFile {
	if mimeType == "" {
		mimeType = detectMIMEType(name, data)
	}
	return &AudioFile{
		Name:     name,
		MIMEType: mimeType,
		Data:     data,
		Format:   probeWAV(data),
	}
}

// Duration returns the playback length when known
func (f *AudioFile) Duration() time.Duration {
	if f == nil || f.Format == nil {
		return 0
	}
	return f.Format.Duration
}

// LoadAudioFile reads a recording from disk
func LoadAudioFile(path string) (*AudioFile, error) {
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", cleanPath)
	}

	// #nosec G304 - the user explicitly chose this path
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	return NewAudioFile(filepath.Base(cleanPath), "", data), nil
}

// Size returns the payload length in bytes
func (f *AudioFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

func detectMIMEType(name string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
		if fallback, ok := audioTypes[ext]; ok {
			return fallback
		}
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

// audioTypes covers extensions that the platform MIME table may not know
var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".aac":  "audio/aac",
}
