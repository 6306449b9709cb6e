package marker

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"ambient/internal/installation"
)

func TestMappingPose(t *testing.T) {
	m := DefaultMapping()
	f := Frame{Width: 640, Height: 480,
		Index: Blob{Area: 400, X: 160, Y: 240},
		Thumb: Blob{Area: 400, X: 192, Y: 240},
	}
	p := m.Pose(f)
	if !p.Detected {
		t.Fatal("expected a hand")
	}
	if math.Abs(p.Hand.IndexTip.X-0.75) > 1e-9 || math.Abs(p.Hand.IndexTip.Y-0.5) > 1e-9 {
		t.Errorf("expected mirrored index at (0.75, 0.5), got %+v", p.Hand.IndexTip)
	}
	if math.Abs(p.Hand.ThumbTip.X-0.7) > 1e-9 {
		t.Errorf("expected thumb x 0.7, got %v", p.Hand.ThumbTip.X)
	}

	m.Mirror = false
	if p := m.Pose(f); math.Abs(p.Hand.IndexTip.X-0.25) > 1e-9 {
		t.Errorf("expected unmirrored x 0.25, got %v", p.Hand.IndexTip.X)
	}
}

func TestMappingMissingMarker(t *testing.T) {
	m := DefaultMapping()
	f := Frame{Width: 640, Height: 480, Index: Blob{Area: 400}, Thumb: Blob{Area: 10}}
	if m.Pose(f).Detected {
		t.Error("expected no hand with a tiny thumb blob")
	}
	if m.Pose(Frame{Index: Blob{Area: 400}, Thumb: Blob{Area: 400}}).Detected {
		t.Error("expected no hand without frame size")
	}
}

type scriptDetector struct {
	mu     sync.Mutex
	frames []Frame
	errs   []error
	i      int
	closed bool
}

func (d *scriptDetector) Detect() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.i
	d.i++
	if i < len(d.errs) && d.errs[i] != nil {
		return Frame{}, d.errs[i]
	}
	if i < len(d.frames) {
		return d.frames[i], nil
	}
	return Frame{}, ErrNoFrame
}

func (d *scriptDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func TestTrackerForwardsChanges(t *testing.T) {
	seen := Frame{Width: 100, Height: 100, Index: Blob{Area: 500, X: 50, Y: 50}, Thumb: Blob{Area: 500, X: 60, Y: 50}}
	empty := Frame{Width: 100, Height: 100}
	boom := errors.New("device lost")
	det := &scriptDetector{
		frames: []Frame{empty, empty, seen, seen, empty, empty, {}},
		errs:   []error{nil, nil, nil, nil, nil, nil, boom},
	}
	var got []installation.PoseEvent
	tr := NewTracker(det, DefaultMapping(), time.Millisecond, nil)
	err := tr.Run(context.Background(), func(p installation.PoseEvent) error {
		got = append(got, p)
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected the detector error, got %v", err)
	}
	if len(got) != 3 || !got[0].Detected || !got[1].Detected || got[2].Detected {
		t.Errorf("expected [hand hand none], got %+v", got)
	}
	if !det.closed {
		t.Error("expected detector closed")
	}
}

func TestTrackerStopsOnCancel(t *testing.T) {
	det := &scriptDetector{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewTracker(det, DefaultMapping(), time.Millisecond, nil).Run(ctx, func(installation.PoseEvent) error { return nil })
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}
}
