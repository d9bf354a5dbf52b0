package audio_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/alkime/practicum/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      audio.EncoderConfig
		expectError string
	}{
		{
			name: "valid config",
			config: audio.EncoderConfig{
				SampleRate:      16000,
				Channels:        1,
				BufferThreshold: 4096,
			},
			expectError: "",
		},
		{
			name: "zero sample rate",
			config: audio.EncoderConfig{
				SampleRate:      0,
				Channels:        1,
				BufferThreshold: 4096,
			},
			expectError: "sample rate must be positive",
		},
		{
			name: "invalid channels",
			config: audio.EncoderConfig{
				SampleRate:      16000,
				Channels:        2,
				BufferThreshold: 4096,
			},
			expectError: "only mono (1 channel) is supported",
		},
		{
			name: "zero buffer threshold",
			config: audio.EncoderConfig{
				SampleRate:      16000,
				Channels:        1,
				BufferThreshold: 0,
			},
			expectError: "buffer threshold must be positive",
		},
		{
			name: "odd buffer threshold",
			config: audio.EncoderConfig{
				SampleRate:      16000,
				Channels:        1,
				BufferThreshold: 4095,
			},
			expectError: "whole samples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEncoderConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    audio.EncoderConfig
		expected audio.EncoderConfig
	}{
		{
			name:  "empty config gets all defaults",
			input: audio.EncoderConfig{},
			expected: audio.EncoderConfig{
				SampleRate:      audio.DefaultSampleRate,
				Channels:        audio.DefaultChannels,
				BufferThreshold: audio.DefaultBufferThreshold,
			},
		},
		{
			name: "partial config preserves custom values",
			input: audio.EncoderConfig{
				SampleRate: 44100,
			},
			expected: audio.EncoderConfig{
				SampleRate:      44100,
				Channels:        audio.DefaultChannels,
				BufferThreshold: audio.DefaultBufferThreshold,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.input.WithDefaults())
		})
	}
}

// sineWave returns one second of a 440Hz tone as S16LE bytes.
func sineWave(sampleRate int) []byte {
	buf := new(bytes.Buffer)
	for i := 0; i < sampleRate; i++ {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)) * 8000)
		_ = binary.Write(buf, binary.LittleEndian, v)
	}

	return buf.Bytes()
}

func TestMP3Encoder_Encode(t *testing.T) {
	t.Parallel()

	enc, err := audio.NewMP3Encoder(audio.EncoderConfig{}.WithDefaults())
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", enc.MIMEType())

	out, err := enc.Encode(sineWave(audio.DefaultSampleRate))
	require.NoError(t, err)
	assert.NotEmpty(t, out, "expected MP3 data to be written")
}

func TestMP3Encoder_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	enc, err := audio.NewMP3Encoder(audio.EncoderConfig{}.WithDefaults())
	require.NoError(t, err)

	_, err = enc.Encode([]byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio samples")

	require.Error(t, enc.EncodeTo(nil, sineWave(16000)))
}

func TestNewMP3Encoder_InvalidConfig(t *testing.T) {
	t.Parallel()

	enc, err := audio.NewMP3Encoder(audio.EncoderConfig{SampleRate: 16000, Channels: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid encoder config")
	assert.Nil(t, enc)
}

func TestDeviceConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, audio.DefaultDeviceConfig(16000).Validate())

	var nilConf *audio.DeviceConfig
	require.Error(t, nilConf.Validate())

	stereo := audio.DefaultDeviceConfig(16000)
	stereo.CaptureChannels = 2
	require.Error(t, stereo.Validate())

	_, err := audio.NewMicrophone(audio.DefaultDeviceConfig(0))
	require.Error(t, err)
}
