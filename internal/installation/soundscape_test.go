package installation

import (
	"errors"
	"math"
	"testing"
)

type fakeDeck struct {
	vol      float64
	playing  bool
	blocked  bool
	plays    int
	rewinds  int
	setCalls int
}

func (d *fakeDeck) Play() error {
	d.plays++
	if d.blocked {
		return ErrPlaybackBlocked
	}
	d.playing = true
	return nil
}
func (d *fakeDeck) Pause()              { d.playing = false }
func (d *fakeDeck) Rewind()             { d.rewinds++ }
func (d *fakeDeck) SetVolume(v float64) { d.vol = v; d.setCalls++ }
func (d *fakeDeck) Volume() float64     { return d.vol }
func (d *fakeDeck) IsPlaying() bool     { return d.playing }

func newTestSoundscape() (*Soundscape, map[Shape]*fakeDeck) {
	fakes := map[Shape]*fakeDeck{}
	decks := map[Shape]Deck{}
	for _, sh := range Shapes() {
		f := &fakeDeck{}
		fakes[sh] = f
		decks[sh] = f
	}
	return NewSoundscape(decks, MasterVolume, NewEventBus(), nil), fakes
}

func settle(s *Soundscape) {
	for i := 0; i < 100; i++ {
		s.StepFades()
	}
}

func audible(fakes map[Shape]*fakeDeck) []Shape {
	var out []Shape
	for _, sh := range Shapes() {
		if f := fakes[sh]; f.playing && f.vol > 0 {
			out = append(out, sh)
		}
	}
	return out
}

func TestSoundscapeStartsMutedAndIdle(t *testing.T) {
	s, _ := newTestSoundscape()
	if !s.Muted() {
		t.Error("expected muted at start")
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle, got %v", s.State())
	}
}

func TestSoundscapeFadeIn(t *testing.T) {
	s, fakes := newTestSoundscape()
	s.SetMuted(false)
	if err := s.SwitchTrack(ShapeHeart); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateTransitioning {
		t.Errorf("expected transitioning, got %v", s.State())
	}
	s.StepFades()
	if got := fakes[ShapeHeart].vol; math.Abs(got-FadeStep) > 1e-9 {
		t.Errorf("expected one fade step, got %v", got)
	}
	settle(s)
	if got := fakes[ShapeHeart].vol; got != MasterVolume {
		t.Errorf("expected master volume, got %v", got)
	}
	if s.State() != StatePlaying {
		t.Errorf("expected playing, got %v", s.State())
	}
	if s.PendingFades() != 0 {
		t.Errorf("expected no pending fades, got %d", s.PendingFades())
	}
}

func TestSoundscapeCrossfade(t *testing.T) {
	s, fakes := newTestSoundscape()
	s.SetMuted(false)
	_ = s.SwitchTrack(ShapeHeart)
	settle(s)

	_ = s.SwitchTrack(ShapeDNA)
	if cur, _ := s.Current(); cur != ShapeDNA {
		t.Errorf("expected current to switch immediately, got %v", cur)
	}
	s.StepFades()
	if fakes[ShapeHeart].vol >= MasterVolume || fakes[ShapeDNA].vol <= 0 {
		t.Errorf("expected both ramps to advance together: heart %v dna %v",
			fakes[ShapeHeart].vol, fakes[ShapeDNA].vol)
	}
	settle(s)
	heart := fakes[ShapeHeart]
	if heart.playing || heart.rewinds != 1 {
		t.Errorf("expected old track paused and rewound, playing=%v rewinds=%d", heart.playing, heart.rewinds)
	}
	if fakes[ShapeDNA].vol != MasterVolume {
		t.Errorf("expected new track at master, got %v", fakes[ShapeDNA].vol)
	}
}

func TestSoundscapeABA(t *testing.T) {
	s, fakes := newTestSoundscape()
	s.SetMuted(false)
	_ = s.SwitchTrack(ShapeHeart)
	settle(s)

	_ = s.SwitchTrack(ShapeSaturn)
	s.StepFades()
	_ = s.SwitchTrack(ShapeHeart)
	settle(s)

	got := audible(fakes)
	if len(got) != 1 || got[0] != ShapeHeart {
		t.Fatalf("expected only heart audible, got %v", got)
	}
	if fakes[ShapeHeart].vol != MasterVolume {
		t.Errorf("expected heart at master, got %v", fakes[ShapeHeart].vol)
	}
	if s.PendingFades() != 0 {
		t.Errorf("expected all fades finished, got %d", s.PendingFades())
	}

	// Nothing left raises any volume afterwards.
	sat := fakes[ShapeSaturn].setCalls
	s.StepFades()
	if fakes[ShapeSaturn].setCalls != sat {
		t.Error("stale fade still writing to superseded track")
	}
}

func TestSoundscapeSameTrackNoop(t *testing.T) {
	s, fakes := newTestSoundscape()
	s.SetMuted(false)
	_ = s.SwitchTrack(ShapeBuddha)
	pending := s.PendingFades()
	plays := fakes[ShapeBuddha].plays

	_ = s.SwitchTrack(ShapeBuddha)
	if s.PendingFades() != pending {
		t.Errorf("expected no new fades, got %d -> %d", pending, s.PendingFades())
	}
	if fakes[ShapeBuddha].plays != plays {
		t.Error("expected no replay of a running track")
	}
}

func TestSoundscapeSameTrackResumesStalled(t *testing.T) {
	s, fakes := newTestSoundscape()
	s.SetMuted(false)
	fakes[ShapeHeart].blocked = true
	_ = s.SwitchTrack(ShapeHeart)
	if fakes[ShapeHeart].playing {
		t.Fatal("expected blocked deck to stay stopped")
	}
	fakes[ShapeHeart].blocked = false
	_ = s.SwitchTrack(ShapeHeart)
	if !fakes[ShapeHeart].playing {
		t.Error("expected retry to start playback")
	}
}

func TestSoundscapeMute(t *testing.T) {
	s, fakes := newTestSoundscape()
	var seen []bool
	s.bus.Subscribe(EventMuteChanged, func(e Event) { seen = append(seen, e.Muted) })

	s.SetMuted(false)
	_ = s.SwitchTrack(ShapeHeart)
	s.StepFades()

	s.SetMuted(true)
	if fakes[ShapeHeart].vol != 0 {
		t.Errorf("expected instant silence, got %v", fakes[ShapeHeart].vol)
	}
	settle(s)
	if fakes[ShapeHeart].vol != 0 {
		t.Errorf("expected fade-in to stop while muted, got %v", fakes[ShapeHeart].vol)
	}

	if muted := s.ToggleMute(); muted {
		t.Error("expected toggle to unmute")
	}
	if fakes[ShapeHeart].vol != MasterVolume {
		t.Errorf("expected instant master volume, got %v", fakes[ShapeHeart].vol)
	}
	if len(seen) != 3 || seen[0] || !seen[1] || seen[2] {
		t.Errorf("unexpected mute events %v", seen)
	}
}

func TestSoundscapeMutedSwitchStaysSilent(t *testing.T) {
	s, fakes := newTestSoundscape()
	_ = s.SwitchTrack(ShapeSaturn)
	settle(s)
	if fakes[ShapeSaturn].vol != 0 {
		t.Errorf("expected silence while muted, got %v", fakes[ShapeSaturn].vol)
	}
	if !fakes[ShapeSaturn].playing {
		t.Error("expected deck started so unmute is instant")
	}
}

func TestSoundscapeForceReset(t *testing.T) {
	s, fakes := newTestSoundscape()
	_ = s.SwitchTrack(ShapeHeart)
	s.SetMuted(false)
	s.ForceReset()
	if s.State() != StateIdle {
		t.Errorf("expected idle after reset, got %v", s.State())
	}
	if !fakes[ShapeHeart].playing {
		t.Error("expected reset to leave playback alone")
	}
	_ = s.SwitchTrack(ShapeHeart)
	if s.PendingFades() != 1 {
		t.Errorf("expected a fresh fade-in, got %d fades", s.PendingFades())
	}
	settle(s)
	if fakes[ShapeHeart].vol != MasterVolume {
		t.Errorf("expected master volume, got %v", fakes[ShapeHeart].vol)
	}
}

func TestSoundscapeInvalidShape(t *testing.T) {
	s, _ := newTestSoundscape()
	if err := s.SwitchTrack(Shape(99)); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
	if s.State() != StateIdle {
		t.Error("expected state untouched")
	}
}

func TestSoundscapeMissingDeck(t *testing.T) {
	s := NewSoundscape(nil, MasterVolume, nil, nil)
	s.SetMuted(false)
	if err := s.SwitchTrack(ShapeDNA); err != nil {
		t.Fatal(err)
	}
	settle(s)
	if s.Volume(ShapeDNA) != MasterVolume {
		t.Errorf("expected silent deck to track volume, got %v", s.Volume(ShapeDNA))
	}
}
