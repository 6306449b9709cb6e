package mic

import (
	"context"
	"fmt"
	"log/slog"
)

// Listener pairs a running Source with an Analyser and serves byte spectra to
// the snap detector on the frame thread.
type Listener struct {
	src      Source
	analyser *Analyser
	block    []float64
}

func NewListener(src Source, cfg AnalyserConfig) (*Listener, error) {
	a, err := NewAnalyser(cfg)
	if err != nil {
		return nil, err
	}
	return &Listener{src: src, analyser: a, block: make([]float64, cfg.FFTSize)}, nil
}

// Listen builds, starts and wraps the configured source.
func Listen(ctx context.Context, cfg Config, logger *slog.Logger) (*Listener, error) {
	src, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	l, err := NewListener(src, DefaultAnalyserConfig())
	if err != nil {
		return nil, err
	}
	if err := src.Start(ctx); err != nil {
		return nil, fmt.Errorf("mic start: %w", err)
	}
	return l, nil
}

// ByteFrequencyData fills dst with the current spectrum. It reports false until
// a full analysis window has been captured.
func (l *Listener) ByteFrequencyData(dst []uint8) bool {
	if l.src.Samples(l.block) < len(l.block) {
		return false
	}
	l.analyser.Process(l.block, dst)
	return true
}

func (l *Listener) Source() Source { return l.src }

func (l *Listener) Close() error { return l.src.Stop() }
