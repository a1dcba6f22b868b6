package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeWAV writes buf as a 16-bit PCM RIFF/WAVE stream.
func EncodeWAV(w io.Writer, buf *Buffer) error {
	if buf == nil || buf.SampleRate <= 0 || len(buf.Channels) == 0 {
		return ErrInvalidFormat
	}
	channels := len(buf.Channels)
	frames := buf.Frames()
	for _, ch := range buf.Channels {
		if len(ch) != frames {
			return fmt.Errorf("%w: channels differ in length", ErrInvalidFormat)
		}
	}

	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	dataSize := frames * blockAlign

	header := []interface{}{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + dataSize),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		uint16(channels),
		uint32(buf.SampleRate),
		uint32(buf.SampleRate * blockAlign),
		uint16(blockAlign),
		uint16(bitsPerSample),
		[4]byte{'d', 'a', 't', 'a'},
		uint32(dataSize),
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("write wav header: %w", err)
		}
	}

	out := make([]byte, dataSize)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 2
			binary.LittleEndian.PutUint16(out[offset:], uint16(toInt16(buf.Channels[ch][i])))
		}
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
