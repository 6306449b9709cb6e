package installation

import (
	"errors"
	"fmt"
	"time"
)

// OnsetConfig holds the snap detector tunables.
type OnsetConfig struct {
	StartBin      int           // bins below this are ignored (room rumble)
	WarmupFrames  int           // frames spent seeding the noise floor
	ArmFrames     int           // detection needs more frames than this
	Refractory    time.Duration // minimum gap between events
	SpikeRatio    float64       // above this multiple of the floor the floor adapts slowly
	TriggerRatio  float64
	AbsoluteFloor float64

	WarmupKeep float64
	SpikeKeep  float64
	DriftKeep  float64
}

func DefaultOnsetConfig() OnsetConfig {
	return OnsetConfig{
		StartBin:      OnsetStartBin,
		WarmupFrames:  OnsetWarmupFrames,
		ArmFrames:     OnsetArmFrames,
		Refractory:    OnsetRefractory,
		SpikeRatio:    OnsetSpikeRatio,
		TriggerRatio:  OnsetTriggerRatio,
		AbsoluteFloor: OnsetAbsoluteFloor,
		WarmupKeep:    0.9,
		SpikeKeep:     0.999,
		DriftKeep:     0.95,
	}
}

// Validate reports the first out-of-range tunable.
func (c OnsetConfig) Validate() error {
	switch {
	case c.StartBin < 0:
		return errors.New("onset: start bin must be >= 0")
	case c.WarmupFrames < 0 || c.ArmFrames < 0:
		return errors.New("onset: frame counts must be >= 0")
	case c.Refractory < 0:
		return errors.New("onset: refractory must be >= 0")
	case c.TriggerRatio <= 0 || c.SpikeRatio <= 0:
		return errors.New("onset: ratios must be > 0")
	}
	for _, k := range []float64{c.WarmupKeep, c.SpikeKeep, c.DriftKeep} {
		if k < 0 || k > 1 {
			return fmt.Errorf("onset: smoothing factor %v outside [0,1]", k)
		}
	}
	return nil
}

// OnsetEvent is one accepted snap.
type OnsetEvent struct {
	At         time.Time
	Energy     float64
	Background float64
}

// OnsetDetector flags short broadband transients against an adaptive noise floor.
// It is not safe for concurrent use.
type OnsetDetector struct {
	cfg OnsetConfig

	background float64
	frames     int
	last       time.Time // zero until the first event
}

func NewOnsetDetector(cfg OnsetConfig) (*OnsetDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OnsetDetector{cfg: cfg}, nil
}

// Background returns the current noise floor estimate.
func (d *OnsetDetector) Background() float64 { return d.background }

// Frames returns the number of warm-up frames consumed so far.
func (d *OnsetDetector) Frames() int { return d.frames }

// Energy is the mean magnitude of bins[start:], 0 when that range is empty.
func Energy(bins []uint8, start int) float64 {
	if start < 0 {
		start = 0
	}
	if start >= len(bins) {
		return 0
	}
	sum := 0
	for _, b := range bins[start:] {
		sum += int(b)
	}
	return float64(sum) / float64(len(bins)-start)
}

// ProcessFrame folds one analyser frame into the floor and reports an onset when the
// frame clears both the relative and absolute thresholds outside the refractory window.
func (d *OnsetDetector) ProcessFrame(bins []uint8, now time.Time) (OnsetEvent, bool) {
	cfg := &d.cfg
	energy := Energy(bins, cfg.StartBin)

	if d.frames < cfg.WarmupFrames {
		if d.background == 0 {
			d.background = energy
		} else {
			d.background = d.background*cfg.WarmupKeep + energy*(1-cfg.WarmupKeep)
		}
		d.frames++
	} else if energy > d.background*cfg.SpikeRatio {
		d.background = d.background*cfg.SpikeKeep + energy*(1-cfg.SpikeKeep)
	} else {
		d.background = d.background*cfg.DriftKeep + energy*(1-cfg.DriftKeep)
	}

	if d.frames <= cfg.ArmFrames {
		return OnsetEvent{}, false
	}
	if !d.last.IsZero() && now.Sub(d.last) <= cfg.Refractory {
		return OnsetEvent{}, false
	}
	if energy <= d.background*cfg.TriggerRatio || energy <= cfg.AbsoluteFloor {
		return OnsetEvent{}, false
	}

	d.last = now
	return OnsetEvent{At: now, Energy: energy, Background: d.background}, true
}
