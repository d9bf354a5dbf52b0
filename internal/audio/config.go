package audio

import (
	"errors"

	"github.com/gen2brain/malgo"
)

// DeviceConfig configures a capture device.
type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
	// PacketBuffer is the capacity of the packet channel handed to the
	// session while a stream is held.
	PacketBuffer int
}

// DefaultDeviceConfig returns the S16LE mono capture configuration the
// encoder expects.
func DefaultDeviceConfig(sampleRate int) *DeviceConfig {
	return &DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      sampleRate,
		PacketBuffer:    64,
	}
}

// Validate returns an error if the config is invalid.
func (c *DeviceConfig) Validate() error {
	if c == nil {
		return errors.New("device config is nil")
	}

	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.CaptureChannels != 1 {
		return errors.New("only mono (1 channel) capture is supported")
	}

	if c.PacketBuffer <= 0 {
		return errors.New("packet buffer must be positive")
	}

	return nil
}
