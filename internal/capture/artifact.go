package capture

import (
	"time"
)

// Artifact is a finished, playable recording.
type Artifact struct {
	ID        string
	MIMEType  string
	Data      []byte
	Chunks    int
	PCMBytes  int
	Duration  time.Duration
	Truncated bool
	CreatedAt time.Time
}

// ArtifactInfo describes an artifact without its payload.
type ArtifactInfo struct {
	ID             string    `json:"id"`
	MIMEType       string    `json:"mimeType"`
	Bytes          int       `json:"bytes"`
	Chunks         int       `json:"chunks"`
	DurationMillis int64     `json:"durationMillis"`
	Truncated      bool      `json:"truncated"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Info returns the payload-free description of a.
func (a *Artifact) Info() *ArtifactInfo {
	if a == nil {
		return nil
	}

	return &ArtifactInfo{
		ID:             a.ID,
		MIMEType:       a.MIMEType,
		Bytes:          len(a.Data),
		Chunks:         a.Chunks,
		DurationMillis: a.Duration.Milliseconds(),
		Truncated:      a.Truncated,
		CreatedAt:      a.CreatedAt,
	}
}

// concat joins chunks strictly in the order they were buffered.
func concat(chunks [][]byte) []byte {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}

	out := make([]byte, 0, size)
	for _, c := range chunks {
		out = append(out, c...)
	}

	return out
}

// pcmDuration is the playback length of S16LE mono pcm at sampleRate.
func pcmDuration(pcmBytes, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}

	samples := pcmBytes / 2

	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
