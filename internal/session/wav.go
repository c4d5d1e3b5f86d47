package session

import (
	"bytes"
	"time"

	"github.com/go-audio/wav"
)

// AudioFormat describes a decodable PCM WAV payload
type AudioFormat struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth"`
	Duration   time.Duration `json:"duration"`
}

// probeWAV reads the RIFF header of data. Non-WAV or truncated payloads
// return nil; they are still uploaded as-is.
func probeWAV(data []byte) *AudioFormat {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil
	}

	format := &AudioFormat{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if d, err := dec.Duration(); err == nil {
		format.Duration = d
	}
	return format
}
