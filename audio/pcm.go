// Package audio decodes narrator speech and tracks its playback state.
package audio

import (
	"encoding/binary"
	"errors"
	"time"
)

// Speech from the TTS model is raw little-endian 16-bit PCM, mono, at 24 kHz.
const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1
)

var ErrInvalidFormat = errors.New("invalid audio format")

// Buffer holds decoded samples in [-1, 1), one slice per channel.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// DecodePCM16LE splits interleaved 16-bit samples into channels, dividing each sample
// by 32768. A trailing odd byte or incomplete frame is ignored.
func DecodePCM16LE(data []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrInvalidFormat
	}
	samples := len(data) / 2
	frames := samples / channels

	buf := &Buffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(data[offset:]))
			buf.Channels[ch][i] = float32(sample) / 32768
		}
	}
	return buf, nil
}

func toInt16(v float32) int16 {
	s := v * 32768
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
