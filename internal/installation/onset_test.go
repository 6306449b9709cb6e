package installation

import (
	"math"
	"testing"
	"time"
)

func flatBins(v uint8) []uint8 {
	b := make([]uint8, 256)
	for i := range b {
		b[i] = v
	}
	return b
}

func newTestDetector(t *testing.T) *OnsetDetector {
	t.Helper()
	d, err := NewOnsetDetector(DefaultOnsetConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

// warm feeds n quiet frames 16ms apart and returns the time of the next frame.
func warm(t *testing.T, d *OnsetDetector, start time.Time, n int, level uint8) time.Time {
	t.Helper()
	now := start
	for i := 0; i < n; i++ {
		if _, ok := d.ProcessFrame(flatBins(level), now); ok {
			t.Fatalf("unexpected onset on quiet frame %d", i)
		}
		now = now.Add(16 * time.Millisecond)
	}
	return now
}

func TestOnsetSingleSpike(t *testing.T) {
	d := newTestDetector(t)
	now := warm(t, d, time.Unix(1000, 0), 50, 10)

	bg := d.Background()
	if math.Abs(bg-10) > 1e-9 {
		t.Fatalf("expected background 10 after warm-up, got %v", bg)
	}
	ev, ok := d.ProcessFrame(flatBins(200), now)
	if !ok {
		t.Fatal("expected onset on 20x spike")
	}
	if ev.Energy != 200 || !ev.At.Equal(now) {
		t.Errorf("unexpected event %+v", ev)
	}
	// The spike barely moves the floor.
	if d.Background() > bg*1.05 {
		t.Errorf("spike absorbed into floor: %v", d.Background())
	}
}

func TestOnsetRefractory(t *testing.T) {
	d := newTestDetector(t)
	now := warm(t, d, time.Unix(1000, 0), 50, 10)

	if _, ok := d.ProcessFrame(flatBins(200), now); !ok {
		t.Fatal("expected first onset")
	}
	if _, ok := d.ProcessFrame(flatBins(200), now.Add(400*time.Millisecond)); ok {
		t.Error("expected second spike inside refractory window to be ignored")
	}
	if _, ok := d.ProcessFrame(flatBins(200), now.Add(1000*time.Millisecond)); ok {
		t.Error("expected spike at exactly the refractory limit to be ignored")
	}
	if _, ok := d.ProcessFrame(flatBins(200), now.Add(1100*time.Millisecond)); !ok {
		t.Error("expected onset after refractory window")
	}
}

func TestOnsetAbsoluteFloor(t *testing.T) {
	d := newTestDetector(t)
	now := warm(t, d, time.Unix(1000, 0), 50, 2)
	// 15 is far above 1.3x a floor of 2 but under the absolute floor.
	if _, ok := d.ProcessFrame(flatBins(15), now); ok {
		t.Error("expected quiet spike to be rejected")
	}
	if _, ok := d.ProcessFrame(flatBins(25), now.Add(16*time.Millisecond)); !ok {
		t.Error("expected spike above absolute floor to fire")
	}
}

func TestOnsetNotArmedEarly(t *testing.T) {
	d := newTestDetector(t)
	now := warm(t, d, time.Unix(1000, 0), 10, 10)
	if _, ok := d.ProcessFrame(flatBins(250), now); ok {
		t.Error("expected no onset before the detector is armed")
	}
}

func TestOnsetIgnoresLowBins(t *testing.T) {
	bins := make([]uint8, 10)
	for i := 0; i < OnsetStartBin; i++ {
		bins[i] = 255
	}
	if e := Energy(bins, OnsetStartBin); e != 0 {
		t.Errorf("expected low bins ignored, got %v", e)
	}
	if e := Energy(bins[:3], OnsetStartBin); e != 0 {
		t.Errorf("expected 0 for short frame, got %v", e)
	}
}

func TestOnsetWarmupSeedsFloor(t *testing.T) {
	d := newTestDetector(t)
	d.ProcessFrame(flatBins(40), time.Unix(0, 0))
	if d.Background() != 40 {
		t.Errorf("expected first frame to seed floor, got %v", d.Background())
	}
	d.ProcessFrame(flatBins(0), time.Unix(0, 0))
	if got := d.Background(); math.Abs(got-36) > 1e-9 {
		t.Errorf("expected 0.9/0.1 blend to give 36, got %v", got)
	}
	if d.Frames() != 2 {
		t.Errorf("expected 2 warm-up frames, got %d", d.Frames())
	}
}

func TestOnsetConfigValidate(t *testing.T) {
	cfg := DefaultOnsetConfig()
	cfg.DriftKeep = 1.5
	if _, err := NewOnsetDetector(cfg); err == nil {
		t.Error("expected error for smoothing factor > 1")
	}
	cfg = DefaultOnsetConfig()
	cfg.TriggerRatio = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero trigger ratio")
	}
}
