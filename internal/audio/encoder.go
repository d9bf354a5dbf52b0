package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// MIMETypeMP3 is the content type of encoded artifacts.
const MIMETypeMP3 = "audio/mpeg"

// MP3Encoder turns a finished S16LE mono PCM recording into a playable MP3.
type MP3Encoder struct {
	config EncoderConfig
}

// NewMP3Encoder creates a new MP3 encoder.
//
// Returns error if config is invalid.
func NewMP3Encoder(config EncoderConfig) (*MP3Encoder, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	return &MP3Encoder{config: config}, nil
}

// MIMEType returns the content type produced by Encode.
func (e *MP3Encoder) MIMEType() string {
	return MIMETypeMP3
}

// Encode converts the whole PCM recording to MP3 bytes.
func (e *MP3Encoder) Encode(pcm []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := e.EncodeTo(&out, pcm); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// EncodeTo writes MP3 frames for pcm to w, batching BufferThreshold bytes
// at a time. A trailing odd byte is ignored.
func (e *MP3Encoder) EncodeTo(w io.Writer, pcm []byte) error {
	if w == nil {
		return errors.New("output writer cannot be nil")
	}

	if len(pcm) < 2 {
		return errors.New("no audio samples to encode")
	}

	// Create shine-mp3 encoder as STEREO (workaround for mono bug)
	encoder := mp3encoder.NewEncoder(e.config.SampleRate, 2)

	batches := 0
	for start := 0; start < len(pcm); start += e.config.BufferThreshold {
		end := min(start+e.config.BufferThreshold, len(pcm))

		if err := encodeBatch(encoder, w, pcm[start:end]); err != nil {
			return err
		}
		batches++
	}

	slog.Debug("encoded MP3 artifact", "pcmBytes", len(pcm), "batches", batches)

	return nil
}

func encodeBatch(encoder *mp3encoder.Encoder, w io.Writer, batch []byte) error {
	monoSamples := BytesToInt16(batch)
	if len(monoSamples) == 0 {
		return nil
	}

	// WORKAROUND: shine-mp3 Write() has a bug for mono (always increments by samples_per_pass * 2)
	// Convert mono to stereo by duplicating samples (L=R)
	stereoSamples := make([]int16, len(monoSamples)*2)
	for i, sample := range monoSamples {
		stereoSamples[i*2] = sample   // Left channel
		stereoSamples[i*2+1] = sample // Right channel (duplicate)
	}

	if err := encoder.Write(w, stereoSamples); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	return nil
}
