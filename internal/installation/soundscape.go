package installation

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Deck is a looping playback handle for one soundtrack.
type Deck interface {
	// Play starts or resumes playback. ErrPlaybackBlocked means the output is not ready yet.
	Play() error
	Pause()
	// Rewind seeks back to the first sample.
	Rewind()
	SetVolume(v float64)
	Volume() float64
	IsPlaying() bool
}

// PlaybackState summarizes the crossfade engine.
type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StatePlaying
	StateTransitioning
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateTransitioning:
		return "transitioning"
	}
	return fmt.Sprintf("PlaybackState(%d)", int(s))
}

// track pairs a shape with its deck. gen is bumped whenever a new fade or a mute
// change takes ownership of the deck's volume; tasks holding an older gen stop.
type track struct {
	shape Shape
	deck  Deck
	gen   uint64
}

type fadeDir int

const (
	fadeOut fadeDir = iota
	fadeIn
)

// fadeTask is one pending volume ramp bound to a single track.
type fadeTask struct {
	dir fadeDir
	t   *track
	gen uint64
	vol float64
}

// Soundscape crossfades between per-shape soundtracks. Fade ramps advance only
// in StepFades, which the caller drives every FadeInterval.
type Soundscape struct {
	tracks  [shapeCount]*track
	current *track
	muted   bool
	master  float64
	fades   []fadeTask

	bus    *EventBus
	logger *slog.Logger
}

// NewSoundscape builds one track per shape. Shapes absent from decks get a silent deck.
// The engine starts muted with no current track.
func NewSoundscape(decks map[Shape]Deck, master float64, bus *EventBus, logger *slog.Logger) *Soundscape {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Soundscape{
		muted:  true,
		master: clampF(master, 0, 1),
		bus:    bus,
		logger: logger.With("component", "soundscape"),
	}
	for _, sh := range Shapes() {
		d := decks[sh]
		if d == nil {
			d = &silentDeck{}
		}
		d.SetVolume(0)
		s.tracks[sh] = &track{shape: sh, deck: d}
	}
	return s
}

// Muted reports the mute flag.
func (s *Soundscape) Muted() bool { return s.muted }

// Master returns the full-scale track volume.
func (s *Soundscape) Master() float64 { return s.master }

// Current returns the active shape, false when idle.
func (s *Soundscape) Current() (Shape, bool) {
	if s.current == nil {
		return 0, false
	}
	return s.current.shape, true
}

// Volume returns the deck volume of a shape's track.
func (s *Soundscape) Volume(sh Shape) float64 {
	if !sh.Valid() {
		return 0
	}
	return s.tracks[sh].deck.Volume()
}

// PendingFades returns the number of ramps still in flight.
func (s *Soundscape) PendingFades() int { return len(s.fades) }

func (s *Soundscape) State() PlaybackState {
	if s.current == nil {
		return StateIdle
	}
	for _, f := range s.fades {
		if f.gen == f.t.gen {
			return StateTransitioning
		}
	}
	return StatePlaying
}

// SwitchTrack makes sh the current track. The previous track fades out and stops;
// the new one starts at zero and, unless muted, ramps to master. Selecting the
// current track again only resumes a stalled deck.
func (s *Soundscape) SwitchTrack(sh Shape) error {
	if !sh.Valid() {
		return fmt.Errorf("switch track: %w: %d", ErrInvalidShape, int(sh))
	}
	next := s.tracks[sh]
	if next == s.current {
		if !s.muted && !next.deck.IsPlaying() {
			s.play(next)
		}
		return nil
	}

	if old := s.current; old != nil {
		old.gen++
		s.fades = append(s.fades, fadeTask{dir: fadeOut, t: old, gen: old.gen, vol: old.deck.Volume()})
	}

	s.current = next
	next.gen++
	next.deck.SetVolume(0)
	s.play(next)
	if !s.muted {
		s.fades = append(s.fades, fadeTask{dir: fadeIn, t: next, gen: next.gen})
	}
	s.logger.Debug("switch track", "shape", sh.String(), "muted", s.muted)
	return nil
}

// SetMuted jumps the current track to 0 or master with no ramp. Any fade-in on
// the current track is cancelled.
func (s *Soundscape) SetMuted(muted bool) {
	s.muted = muted
	if cur := s.current; cur != nil {
		cur.gen++
		if muted {
			cur.deck.SetVolume(0)
		} else {
			cur.deck.SetVolume(s.master)
			if !cur.deck.IsPlaying() {
				s.play(cur)
			}
		}
	}
	s.bus.Emit(Event{Type: EventMuteChanged, Muted: muted})
}

// ToggleMute flips the mute flag and returns the new value.
func (s *Soundscape) ToggleMute() bool {
	s.SetMuted(!s.muted)
	return s.muted
}

// ForceReset forgets the current track without touching playback, so the next
// SwitchTrack is treated as a real transition.
func (s *Soundscape) ForceReset() {
	s.current = nil
}

// StepFades advances every ramp by one FadeStep and drops finished or superseded ones.
func (s *Soundscape) StepFades() {
	live := s.fades[:0]
	for _, f := range s.fades {
		if f.gen != f.t.gen {
			continue
		}
		d := f.t.deck
		switch f.dir {
		case fadeOut:
			if f.vol > FadeStep {
				f.vol -= FadeStep
				d.SetVolume(f.vol)
				live = append(live, f)
				continue
			}
			d.Pause()
			d.Rewind()
		case fadeIn:
			if f.t != s.current || s.muted {
				continue
			}
			if f.vol < s.master {
				f.vol = math.Min(f.vol+FadeStep, s.master)
				d.SetVolume(f.vol)
				live = append(live, f)
			}
		}
	}
	for i := len(live); i < len(s.fades); i++ {
		s.fades[i] = fadeTask{}
	}
	s.fades = live
}

func (s *Soundscape) play(t *track) {
	err := t.deck.Play()
	switch {
	case err == nil:
	case errors.Is(err, ErrPlaybackBlocked):
		s.logger.Debug("playback deferred", "shape", t.shape.String())
	default:
		s.logger.Warn("playback failed", "shape", t.shape.String(), "err", err)
	}
}

// silentDeck stands in for a track whose asset could not be loaded.
type silentDeck struct {
	vol     float64
	playing bool
}

func (d *silentDeck) Play() error         { d.playing = true; return nil }
func (d *silentDeck) Pause()              { d.playing = false }
func (d *silentDeck) Rewind()             {}
func (d *silentDeck) SetVolume(v float64) { d.vol = v }
func (d *silentDeck) Volume() float64     { return d.vol }
func (d *silentDeck) IsPlaying() bool     { return d.playing }
