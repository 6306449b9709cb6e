package mic

import (
	"fmt"
	"os"
	"sync"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Recorder writes captured mono samples to a 16-bit WAV file, for tuning the
// snap thresholds against a real room.
type Recorder struct {
	mu     sync.Mutex
	f      *os.File
	enc    *wav.Encoder
	format *audio.Format
	data   []float32
	frames int
	err    error
	closed bool
}

func NewRecorder(path string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	return &Recorder{
		f:      f,
		enc:    wav.NewEncoder(f, sampleRate, 16, 1, 1),
		format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
	}, nil
}

// Write appends samples. It matches the capture Tap signature; the first
// encoder error is kept and returned by Close.
func (r *Recorder) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.err != nil || len(samples) == 0 {
		return
	}
	r.data = r.data[:0]
	for _, s := range samples {
		r.data = append(r.data, float32(max(-1, min(1, s))))
	}
	buf := &audio.Float32Buffer{Format: r.format, Data: r.data, SourceBitDepth: 16}
	if err := r.enc.Write(buf); err != nil {
		r.err = fmt.Errorf("recorder write: %w", err)
		return
	}
	r.frames += len(samples)
}

// Frames returns the number of samples written.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}
	r.closed = true
	if err := r.enc.Close(); err != nil && r.err == nil {
		r.err = fmt.Errorf("recorder close: %w", err)
	}
	if err := r.f.Close(); err != nil && r.err == nil {
		r.err = fmt.Errorf("recorder close: %w", err)
	}
	return r.err
}
