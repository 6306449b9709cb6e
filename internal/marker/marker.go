// Package marker turns two colored fingertip markers seen by a webcam into hand
// poses, for installations where no landmark model is available.
package marker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ambient/internal/installation"
)

// Blob is one segmented marker in pixel coordinates.
type Blob struct {
	Area float64
	X, Y float64
}

// Frame is one detector result.
type Frame struct {
	Width, Height int
	Index, Thumb  Blob
}

// Detector grabs and segments one camera frame.
type Detector interface {
	Detect() (Frame, error)
	Close() error
}

// ErrNoFrame is returned by a Detector when the camera delivered nothing this time.
var ErrNoFrame = errors.New("no camera frame")

// Mapping controls how frames become poses.
type Mapping struct {
	MinArea float64 // pixels; smaller blobs count as missing
	Mirror  bool    // flip x like a selfie preview
}

func DefaultMapping() Mapping {
	return Mapping{MinArea: 150, Mirror: true}
}

// Pose converts a frame into a tracker report. Both markers must be visible.
func (m Mapping) Pose(f Frame) installation.PoseEvent {
	if f.Width <= 0 || f.Height <= 0 || f.Index.Area < m.MinArea || f.Thumb.Area < m.MinArea {
		return installation.NoHand
	}
	norm := func(b Blob) installation.Point {
		x := b.X / float64(f.Width)
		if m.Mirror {
			x = 1 - x
		}
		return installation.Point{X: x, Y: b.Y / float64(f.Height)}
	}
	return installation.HandPose(installation.HandLandmarks{
		IndexTip: norm(f.Index),
		ThumbTip: norm(f.Thumb),
	})
}

// Sink receives poses. installation.App.SubmitPose satisfies it.
type Sink func(installation.PoseEvent) error

// Tracker polls a Detector and forwards poses to a sink.
type Tracker struct {
	det      Detector
	mapping  Mapping
	interval time.Duration
	logger   *slog.Logger
}

func NewTracker(det Detector, mapping Mapping, interval time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return &Tracker{det: det, mapping: mapping, interval: interval, logger: logger.With("component", "marker")}
}

// Run polls until ctx is done or the detector fails hard. Only state changes and
// hand positions are forwarded; repeated no-hand frames are not.
func (t *Tracker) Run(ctx context.Context, sink Sink) error {
	defer t.det.Close()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	hand := false
	misses := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		f, err := t.det.Detect()
		switch {
		case errors.Is(err, ErrNoFrame):
			misses++
			if misses == 30 {
				t.logger.Warn("camera stalled")
			}
			continue
		case err != nil:
			return err
		}
		misses = 0

		p := t.mapping.Pose(f)
		if !p.Detected && !hand {
			continue
		}
		if p.Detected != hand {
			t.logger.Debug("marker tracking", "hand", p.Detected)
		}
		hand = p.Detected
		if err := sink(p); err != nil {
			t.logger.Debug("pose dropped", "err", err)
		}
	}
}
