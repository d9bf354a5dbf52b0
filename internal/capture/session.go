// Package capture implements the audio capture session: acquiring the
// microphone, buffering encoded chunks in arrival order and producing a
// playable artifact, while guaranteeing the device is released on every
// path out of Requesting/Recording.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alkime/practicum/internal/audio"
	"github.com/alkime/practicum/pkg/uictl"
	"github.com/google/uuid"
)

// DefaultLevelWindow is the number of recent samples kept for the level
// meter (~250ms @ 16kHz).
const DefaultLevelWindow = 4000

// Device is the device layer: a capability request for audio input that
// yields either a live stream or an error.
type Device interface {
	Acquire(ctx context.Context) (audio.Stream, error)
}

// Encoder turns the concatenated PCM of a recording into a playable
// payload.
type Encoder interface {
	Encode(pcm []byte) ([]byte, error)
	MIMEType() string
}

// Options tune a session. Zero values pick sensible defaults.
type Options struct {
	// SampleRate of the PCM delivered by the device, used for durations.
	SampleRate int
	// MaxBytes caps buffered PCM. Packets past the cap are discarded and
	// the artifact is marked truncated. Zero means unlimited.
	MaxBytes int64
	// LevelWindow is the number of samples kept for the level meter.
	LevelWindow int
	Logger      *slog.Logger
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = audio.DefaultSampleRate
	}

	if o.LevelWindow <= 0 {
		o.LevelWindow = DefaultLevelWindow
	}

	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	return o
}

// Session owns at most one device stream at a time. User actions are
// serialized; device packets and acquisition results are applied under
// the state lock as they arrive.
type Session struct {
	device  Device
	encoder Encoder
	opts    Options
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// actions serializes Start/Stop/Reset/AcknowledgeError/Close.
	actions sync.Mutex

	mu        sync.Mutex
	state     State
	gen       uint64
	stream    audio.Stream
	stopping  bool
	pumpDone  chan struct{}
	chunks    [][]byte
	size      int64
	truncated bool
	startedAt time.Time
	artifact  *Artifact
	lastErr   error
	closed    bool
	subs      []*subscriber

	levels *audio.SampleRingBuffer
}

// NewSession creates an Idle session.
func NewSession(device Device, encoder Encoder, opts Options) (*Session, error) {
	if device == nil {
		return nil, errors.New("capture device cannot be nil")
	}

	if encoder == nil {
		return nil, errors.New("encoder cannot be nil")
	}

	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		device:  device,
		encoder: encoder,
		opts:    opts,
		logger:  opts.Logger.With("component", "capture"),
		ctx:     ctx,
		cancel:  cancel,
		state:   Idle,
		levels:  audio.NewSampleRingBuffer(opts.LevelWindow),
	}, nil
}

// Start issues the microphone request. Only available from Idle.
func (s *Session) Start() error {
	s.actions.Lock()
	defer s.actions.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if s.state != Idle {
		return fmt.Errorf("start from %s: %w", s.state, ErrActionUnavailable)
	}

	s.gen++
	gen := s.gen
	s.transition(Requesting, nil)

	s.wg.Go(func() {
		s.acquire(gen)
	})

	return nil
}

func (s *Session) acquire(gen uint64) {
	stream, err := s.device.Acquire(s.ctx)

	s.mu.Lock()

	if gen != s.gen || s.state != Requesting {
		// Superseded by Close; nobody owns this stream.
		s.mu.Unlock()
		if stream != nil {
			s.release(stream)
		}
		return
	}

	if err != nil {
		s.lastErr = &DeviceAccessError{Err: err}
		s.transition(Error, s.lastErr)
		s.mu.Unlock()
		s.logger.Warn("microphone request failed", "error", err)
		return
	}

	if stream == nil {
		s.lastErr = &DeviceAccessError{Err: errors.New("device returned no stream")}
		s.transition(Error, s.lastErr)
		s.mu.Unlock()
		return
	}

	done := make(chan struct{})
	s.stream = stream
	s.stopping = false
	s.pumpDone = done
	s.chunks = nil
	s.size = 0
	s.truncated = false
	s.levels.Reset()
	s.startedAt = s.opts.Now()
	s.transition(Recording, nil)
	s.mu.Unlock()

	s.wg.Go(func() {
		s.pump(stream, done)
	})
}

// pump buffers packets in arrival order until the stream closes.
func (s *Session) pump(stream audio.Stream, done chan struct{}) {
	defer close(done)

	for packet := range stream.Packets() {
		s.appendChunk(packet)
	}

	s.mu.Lock()
	lost := !s.stopping && s.stream == stream
	if lost {
		s.stream = nil
		s.chunks = nil
		s.size = 0
		s.lastErr = &DeviceAccessError{Err: ErrStreamLost}
		s.transition(Error, s.lastErr)
	}
	s.mu.Unlock()

	if lost {
		s.logger.Warn("device stream lost while recording")
		s.release(stream)
	}
}

func (s *Session) appendChunk(packet audio.DataPacket) {
	if len(packet) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Once anything is dropped, everything after it is dropped too.
	if s.truncated {
		return
	}

	if s.opts.MaxBytes > 0 && s.size+int64(len(packet)) > s.opts.MaxBytes {
		s.logger.Info("recording reached max bytes, discarding further audio",
			"maxBytes", s.opts.MaxBytes)
		s.truncated = true
		return
	}

	s.chunks = append(s.chunks, packet)
	s.size += int64(len(packet))
	s.levels.Write(audio.BytesToInt16(packet))
}

// Stop releases the device stream and finalizes the buffered chunks into
// an artifact. The stream is released before finalization, so a
// finalization failure never leaves the microphone held.
func (s *Session) Stop() error {
	s.actions.Lock()
	defer s.actions.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	if s.state != Recording {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("stop from %s: %w", state, ErrActionUnavailable)
	}

	stream, done := s.stream, s.pumpDone
	s.stopping = true
	s.mu.Unlock()

	s.release(stream)
	<-done

	s.mu.Lock()
	s.stream = nil
	chunks, truncated := s.chunks, s.truncated
	s.chunks = nil
	s.size = 0
	s.mu.Unlock()

	artifact, err := s.finalize(chunks, truncated)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = &FinalizeError{Err: err}
		s.transition(Error, s.lastErr)
		s.logger.Error("recording finalization failed", "error", err)
		return s.lastErr
	}

	s.artifact = artifact
	s.transition(Stopped, nil)
	s.logger.Info("recording captured",
		"artifact", artifact.ID,
		"chunks", artifact.Chunks,
		"bytes", len(artifact.Data),
		"duration", artifact.Duration)

	return nil
}

func (s *Session) finalize(chunks [][]byte, truncated bool) (*Artifact, error) {
	pcm := concat(chunks)
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}

	data, err := s.encoder.Encode(pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recording: %w", err)
	}

	return &Artifact{
		ID:        uuid.NewString(),
		MIMEType:  s.encoder.MIMEType(),
		Data:      data,
		Chunks:    len(chunks),
		PCMBytes:  len(pcm),
		Duration:  pcmDuration(len(pcm), s.opts.SampleRate),
		Truncated: truncated,
		CreatedAt: s.opts.Now(),
	}, nil
}

// Reset discards the artifact ("record again"). Only available from
// Stopped.
func (s *Session) Reset() error {
	s.actions.Lock()
	defer s.actions.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if s.state != Stopped {
		return fmt.Errorf("reset from %s: %w", s.state, ErrActionUnavailable)
	}

	s.artifact = nil
	s.chunks = nil
	s.levels.Reset()
	s.transition(Idle, nil)

	return nil
}

// AcknowledgeError returns an Error session to Idle. There is no
// automatic retry.
func (s *Session) AcknowledgeError() error {
	s.actions.Lock()
	defer s.actions.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if s.state != Error {
		return fmt.Errorf("acknowledge from %s: %w", s.state, ErrActionUnavailable)
	}

	s.lastErr = nil
	s.transition(Idle, nil)

	return nil
}

// Close tears the session down from any state: it abandons an in-flight
// request, releases a held stream and waits for the session's goroutines.
// The device must honor context cancellation for Close to return promptly
// while a request is in flight. Close is idempotent.
func (s *Session) Close() error {
	s.actions.Lock()
	defer s.actions.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	s.gen++
	stream, done := s.stream, s.pumpDone
	s.stopping = true
	s.stream = nil
	s.chunks = nil
	s.artifact = nil
	s.lastErr = nil
	if s.state != Idle {
		s.transition(Idle, nil)
	}
	s.subs = nil
	s.mu.Unlock()

	s.cancel()

	var err error
	if stream != nil {
		err = s.release(stream)
		<-done
	}

	s.wg.Wait()

	return err
}

func (s *Session) release(stream audio.Stream) error {
	if err := stream.Release(); err != nil {
		s.logger.Warn("failed to release device stream", "error", err)
		return fmt.Errorf("failed to release device stream: %w", err)
	}

	return nil
}

// transition must be called with s.mu held.
func (s *Session) transition(to State, err error) {
	from := s.state
	s.state = to
	s.logger.Debug("capture state change", "from", from, "to", to)
	s.publish(Event{From: from, To: to, At: s.opts.Now(), Err: err})
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// HoldsDevice reports whether the session currently owns a device stream.
func (s *Session) HoldsDevice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stream != nil
}

// Artifact returns the finished recording, or nil unless Stopped.
func (s *Session) Artifact() *Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.artifact
}

// Err returns the error being surfaced in the Error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

// Levels exposes the recent-sample buffer backing the level meter.
func (s *Session) Levels() uictl.Levels[int16] {
	return s.levels
}

// Captured exposes buffered PCM bytes against MaxBytes.
func (s *Session) Captured() uictl.CappedDial[int64] {
	return capturedDial{s: s}
}

type capturedDial struct{ s *Session }

func (d capturedDial) Read() int64 {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	return d.s.size
}

func (d capturedDial) Cap() (num, maxValue int64) {
	return d.Read(), d.s.opts.MaxBytes
}

// Snapshot is a read-only view of the session for the presentation layer.
type Snapshot struct {
	State         State         `json:"state"`
	DeviceHeld    bool          `json:"deviceHeld"`
	ElapsedMillis int64         `json:"elapsedMillis"`
	Level         float64       `json:"level"`
	BytesCaptured int64         `json:"bytesCaptured"`
	Artifact      *ArtifactInfo `json:"artifact,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Snapshot captures the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:         s.state,
		DeviceHeld:    s.stream != nil,
		BytesCaptured: s.size,
		Artifact:      s.artifact.Info(),
	}

	if s.state == Recording {
		snap.ElapsedMillis = s.opts.Now().Sub(s.startedAt).Milliseconds()
		snap.Level = audio.PeakLevel(s.levels.Read())
	}

	if s.lastErr != nil {
		snap.Error = UserMessage(s.lastErr)
	}

	return snap
}

// UserMessage returns the text to display for err, falling back to the
// error string when err carries no user-facing message.
func UserMessage(err error) string {
	var msg interface{ UserMessage() string }
	if errors.As(err, &msg) {
		return msg.UserMessage()
	}

	return err.Error()
}
