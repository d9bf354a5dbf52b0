package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/practicum/internal/audio"
	"github.com/alkime/practicum/internal/capture"
	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/workdir"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/alkime/practicum/pkg/uictl"
)

// CLI defines the practicum command structure.
type CLI struct {
	Devices  DevicesCmd  `cmd:"" help:"List available audio devices"`
	Record   RecordCmd   `cmd:"" help:"Record a practice response from the microphone"`
	Variants VariantsCmd `cmd:"" help:"List practice variants"`
	Quiz     QuizCmd     `cmd:"" help:"Take the learn-phase quiz"`
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating audio devices...")

	mic, err := audio.NewMicrophone(audio.DefaultDeviceConfig(audio.DefaultSampleRate))
	if err != nil {
		return fmt.Errorf("failed to configure microphone: %w", err)
	}

	devices, err := mic.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// RecordCmd runs one capture session against the microphone.
type RecordCmd struct {
	Duration   time.Duration `flag:"" default:"30s" help:"How long to record"`
	Output     string        `flag:"" optional:"" help:"Output file path (default: working directory)"`
	Name       string        `flag:"" optional:"" help:"Working name (default: timestamp)"`
	SampleRate int           `flag:"" default:"16000" help:"Capture sample rate in Hz"`
	MaxBytes   int64         `flag:"" default:"33554432" help:"Max buffered PCM (32MB)"`
}

// Run executes the record command.
func (c *RecordCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	output, err := c.outputPath()
	if err != nil {
		return err
	}

	mic, err := audio.NewMicrophone(audio.DefaultDeviceConfig(c.SampleRate))
	if err != nil {
		return fmt.Errorf("failed to configure microphone: %w", err)
	}

	enc, err := audio.NewMP3Encoder(audio.EncoderConfig{SampleRate: c.SampleRate, Channels: 1}.WithDefaults())
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	session, err := capture.NewSession(mic, enc, capture.Options{
		SampleRate: c.SampleRate,
		MaxBytes:   c.MaxBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to create capture session: %w", err)
	}

	// always release the microphone when we're done
	defer func() {
		if err := session.Close(); err != nil {
			slog.Error("Failed to close capture session", "error", err)
		}
	}()

	events := make(chan capture.Event, 8)
	unsubscribe, err := session.Subscribe(events)
	if err != nil {
		return fmt.Errorf("failed to subscribe to capture events: %w", err)
	}
	defer unsubscribe()

	if err := session.Start(); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	if err := awaitRecording(ctx, events, session); err != nil {
		return err
	}

	fmt.Printf("Recording for %s (Ctrl+C to stop early)\n", c.Duration)
	monitor(ctx, c.Duration, session)

	return saveRecording(os.Stdout, session, output)
}

type stoppable interface {
	Stop() error
	Err() error
	Artifact() *capture.Artifact
}

// saveRecording stops the session and writes the artifact to output. When
// the session ends up in the Error state its user message is printed.
func saveRecording(out io.Writer, session stoppable, output string) error {
	if err := session.Stop(); err != nil {
		// A lost stream leaves the session in Error before Stop is called,
		// so Stop itself only reports that it was unavailable.
		failure := session.Err()
		if failure == nil {
			failure = err
		}

		fmt.Fprintf(out, "\n%s\n", capture.UserMessage(failure))
		return fmt.Errorf("failed to finish recording: %w", failure)
	}

	artifact := session.Artifact()
	if err := os.WriteFile(output, artifact.Data, 0o600); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}

	fmt.Fprintf(out, "\nSaved %s (%s, %d bytes)\n", output, artifact.Duration.Round(time.Millisecond), len(artifact.Data))
	if artifact.Truncated {
		fmt.Fprintln(out, "Recording hit the size limit and was truncated.")
	}

	return nil
}

func (c *RecordCmd) outputPath() (string, error) {
	if c.Output != "" {
		if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		return c.Output, nil
	}

	name := workdir.Name(c.Name, time.Now())
	if err := workdir.Prep(name); err != nil {
		return "", fmt.Errorf("failed to prepare working directory: %w", err)
	}

	path, err := workdir.FilePath(name, workdir.RecordingFile)
	if err != nil {
		return "", fmt.Errorf("failed to determine output path: %w", err)
	}

	return path, nil
}

// awaitRecording blocks until the microphone request resolves.
func awaitRecording(ctx context.Context, events <-chan capture.Event, session *capture.Session) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev.To {
			case capture.Recording:
				return nil
			case capture.Error:
				return errors.Join(errors.New(capture.DeviceAccessMessage), session.Err())
			}
		}
	}
}

// monitor prints a level meter until d elapses or ctx is done.
func monitor(ctx context.Context, d time.Duration, session *capture.Session) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case <-ticker.C:
			snap := session.Snapshot()
			if snap.State != capture.Recording {
				return
			}
			fmt.Printf("\r%6.1fs %s %3.0f%% of limit",
				float64(snap.ElapsedMillis)/1000,
				meter(session.Levels(), 20),
				uictl.Fraction(session.Captured())*100)
		}
	}
}

func meter(levels uictl.Levels[int16], width int) string {
	filled := int(audio.PeakLevel(levels.Read()) * float64(width))

	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", width-filled) + "]"
}

// VariantsCmd lists the practice variants.
type VariantsCmd struct{}

// Run executes the variants command.
func (c *VariantsCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *VariantsCmd) run(out io.Writer) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	for _, v := range cat.Variants {
		marker := " "
		if v.ID == cat.DefaultVariant {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s %s\n  %s\n", marker, v.ID, v.Title, v.Description)
	}

	return nil
}

// QuizCmd takes the learn-phase quiz on stdin.
type QuizCmd struct {
	Variant string `flag:"" default:"discourse" help:"Practice variant"`
}

// Run executes the quiz command.
func (c *QuizCmd) Run() error {
	return c.run(os.Stdin, os.Stdout)
}

func (c *QuizCmd) run(in io.Reader, out io.Writer) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	learn := workflow.NewLearn(cat, catalog.ParseVariant(c.Variant), slog.Default())
	defer learn.Close() //nolint:errcheck // never fails

	fmt.Fprintf(out, "Knowledge check: %s\n", learn.Variant().Title())

	scanner := bufio.NewScanner(in)

	for {
		for _, q := range cat.Quiz {
			if err := askQuestion(scanner, out, learn, q); err != nil {
				return err
			}
		}

		passed, err := learn.CheckAnswers()
		if err != nil {
			return fmt.Errorf("failed to check answers: %w", err)
		}

		if passed {
			fmt.Fprintln(out, "Quiz completed! You've demonstrated understanding of the key concepts.")
			return nil
		}

		fmt.Fprintln(out, learn.Snapshot().Notice)
	}
}

func askQuestion(scanner *bufio.Scanner, out io.Writer, learn *workflow.Learn, q catalog.Question) error {
	fmt.Fprintf(out, "\n%s\n", q.Prompt)
	for _, o := range q.Options {
		fmt.Fprintf(out, "  %s) %s\n", o.ID, o.Text)
	}

	current := learn.Snapshot().SelectedAnswers[q.ID]

	for {
		if current != "" {
			fmt.Fprintf(out, "answer [%s]: ", current)
		} else {
			fmt.Fprint(out, "answer: ")
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read answer: %w", err)
			}
			return io.ErrUnexpectedEOF
		}

		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if choice == "" && current != "" {
			return nil
		}

		err := learn.SelectAnswer(q.ID, choice)
		if err == nil {
			return nil
		}

		if !errors.Is(err, workflow.ErrInvalidAnswer) {
			return err
		}

		fmt.Fprintf(out, "%q is not an option\n", choice)
	}
}

func main() {
	// Set up text-based logger for CLI output
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("practicum"),
		kong.Description("Learn, practice and reflect from the terminal."),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
