package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/practicum/pkg/collections"
	"github.com/gen2brain/malgo"
)

// DataPacket is a segment of raw S16LE PCM bytes.
type DataPacket = []byte

// Stream is an exclusively held capture stream. Packets arrive in capture
// order until Release is called, after which the packet channel is closed.
// Release is idempotent.
type Stream interface {
	Packets() <-chan DataPacket
	Release() error
}

// Microphone acquires capture streams from the system default input
// device through malgo.
type Microphone struct {
	conf *DeviceConfig
}

// NewMicrophone creates a microphone for the given device config.
func NewMicrophone(conf *DeviceConfig) (*Microphone, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device config: %w", err)
	}

	return &Microphone{conf: conf}, nil
}

// Acquire allocates the capture device, starts it and hands back the
// stream. Every failure path deallocates whatever was allocated.
func (m *Microphone) Acquire(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("microphone request abandoned: %w", err)
	}

	dev := &device{conf: m.conf}
	dataC := make(chan DataPacket, m.conf.PacketBuffer)

	if err := dev.captureInto(dataC); err != nil {
		return nil, fmt.Errorf("failed to allocate capture device: %w", err)
	}

	if err := dev.start(); err != nil {
		dev.dealloc()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	slog.Debug("microphone acquired", "sampleRate", m.conf.SampleRate)

	return &micStream{dev: dev, dataC: dataC}, nil
}

// EnumerateDevices lists available capture devices.
func (m *Microphone) EnumerateDevices(_ context.Context) ([]Info, error) {
	// Initialize an empty context. AFAICT this is fine for just
	// enumerating the available devices.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	captureDevices, err := devCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	return collections.Apply(captureDevices, malgoDeviceInfoToDeviceInfo), nil
}

type micStream struct {
	dev   *device
	dataC chan DataPacket

	once sync.Once
	err  error
}

func (s *micStream) Packets() <-chan DataPacket {
	return s.dataC
}

// Release stops the device (which blocks until the data callback has
// returned), frees it, then closes the packet channel.
func (s *micStream) Release() error {
	s.once.Do(func() {
		if err := s.dev.stop(); err != nil {
			s.err = fmt.Errorf("failed to stop capture device: %w", err)
		}
		s.dev.dealloc()
		close(s.dataC)
		slog.Debug("microphone released")
	})

	return s.err
}

type device struct {
	conf *DeviceConfig

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

func (d *device) captureInto(dataC chan DataPacket) error {
	if dataC == nil {
		return fmt.Errorf("data channel is nil. unable to allocate device")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		slog.Debug("malgo audio device log", "msg", msg)
	})
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = d.conf.Format
	devCnf.Capture.Channels = uint32(d.conf.CaptureChannels) //nolint:gosec // validated mono
	devCnf.SampleRate = uint32(d.conf.SampleRate)            //nolint:gosec // validated positive

	callBacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// malgo reuses the sample buffer between callbacks.
			packet := make(DataPacket, len(samples))
			copy(packet, samples)
			dataC <- packet
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callBacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	d.mgCtx = mgCtx
	d.mgDevice = mgDevice

	return nil
}

func (d *device) start() error {
	if d.mgDevice == nil {
		return fmt.Errorf("device nil. have you allocated it?")
	}

	if d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) stop() error {
	if d.mgDevice == nil {
		// noop
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) dealloc() {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

// Info describes a capture device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}
	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
