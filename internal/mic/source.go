// Package mic captures microphone audio and turns it into the byte-scaled
// magnitude spectrum the snap detector reads.
//
// Capture runs an external recorder (parec, pw-record, arecord or sox) and
// reads raw PCM from its stdout. A mock source stands in for tests and
// machines without a microphone.
package mic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	SampleRate = 48000
	FFTSize    = 512
	BinCount   = FFTSize / 2

	ringSize = 8192
)

// Backend names a capture implementation.
type Backend string

const (
	BackendAuto     Backend = "auto"
	BackendMock     Backend = "mock"
	BackendPulse    Backend = "parec"
	BackendPipeWire Backend = "pw-record"
	BackendALSA     Backend = "arecord"
	BackendSoX      Backend = "sox"
)

var (
	ErrNoCaptureBackend = errors.New("no audio capture backend found")
	ErrClosed           = errors.New("source closed")
)

// Source is a running microphone.
type Source interface {
	// Start begins capture. It returns once samples flow or the device refuses.
	Start(ctx context.Context) error
	// Stop halts capture. Safe to call more than once.
	Stop() error
	// Samples copies the most recent len(dst) samples into dst and returns how many were available.
	Samples(dst []float64) int
	Name() string
}

// Config selects and tunes a capture source.
type Config struct {
	Backend Backend
	Device  string
	// Tap, when set, receives every captured block on the capture goroutine.
	Tap func([]float64)
}

// NewSource builds the configured source without starting it.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend := Backend(strings.ToLower(string(cfg.Backend)))
	if backend == "" {
		backend = BackendAuto
	}
	logger.Info("creating capture source", "backend", backend, "device", cfg.Device)

	switch backend {
	case BackendMock:
		return NewMockSource(MockConfig{Tap: cfg.Tap}, logger), nil
	case BackendAuto:
		bc, err := DetectBackend(cfg.Device)
		if err != nil {
			return nil, err
		}
		return NewExecSource(bc, cfg.Tap, logger), nil
	case BackendPulse, BackendPipeWire, BackendALSA, BackendSoX:
		bc, err := LookupBackend(backend, cfg.Device)
		if err != nil {
			return nil, err
		}
		return NewExecSource(bc, cfg.Tap, logger), nil
	}
	return nil, fmt.Errorf("unsupported capture backend: %s", backend)
}
