//go:build !android

package desktop

import (
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"ambient/internal/installation"
)

// AudioSystem owns the output context and one player per soundtrack.
type AudioSystem struct {
	ctx   *oto.Context
	ready chan struct{}

	mu    sync.Mutex
	decks []*otoDeck
}

// InitAudio opens the float32 stereo output. The context is usable once Ready reports true.
func InitAudio() (*AudioSystem, error) {
	ctx, ready, err := oto.NewContext(installation.SampleRate, installation.ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	return &AudioSystem{ctx: ctx, ready: ready}, nil
}

// Ready reports whether the output device finished starting.
func (a *AudioSystem) Ready() bool {
	select {
	case <-a.ready:
		return true
	default:
		return false
	}
}

// Decks wraps every loaded track in a Deck for the soundscape.
func (a *AudioSystem) Decks(tracks map[installation.Shape]*installation.TrackStream) map[installation.Shape]installation.Deck {
	out := make(map[installation.Shape]installation.Deck, len(tracks))
	for sh, ts := range tracks {
		out[sh] = a.NewDeck(ts)
	}
	return out
}

func (a *AudioSystem) NewDeck(src io.ReadSeeker) installation.Deck {
	d := &otoDeck{sys: a, src: src}
	a.mu.Lock()
	a.decks = append(a.decks, d)
	a.mu.Unlock()
	return d
}

// Close stops every player.
func (a *AudioSystem) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, d := range a.decks {
		if d.player != nil {
			d.player.Close()
			d.player = nil
		}
	}
}

// otoDeck is a lazily created oto player over a looping track.
type otoDeck struct {
	sys    *AudioSystem
	src    io.ReadSeeker
	player oto.Player
	vol    float64
}

func (d *otoDeck) Play() error {
	if !d.sys.Ready() {
		return installation.ErrPlaybackBlocked
	}
	if d.player == nil {
		d.player = d.sys.ctx.NewPlayer(d.src)
		d.player.SetVolume(d.vol)
	}
	d.player.Play()
	return nil
}

func (d *otoDeck) Pause() {
	if d.player != nil {
		d.player.Pause()
	}
}

func (d *otoDeck) Rewind() {
	if d.player != nil {
		if sk, ok := d.player.(io.Seeker); ok {
			_, _ = sk.Seek(0, io.SeekStart)
			return
		}
	}
	_, _ = d.src.Seek(0, io.SeekStart)
}

func (d *otoDeck) SetVolume(v float64) {
	d.vol = min(max(v, 0), 1)
	if d.player != nil {
		d.player.SetVolume(d.vol)
	}
}

func (d *otoDeck) Volume() float64 { return d.vol }

func (d *otoDeck) IsPlaying() bool {
	return d.player != nil && d.player.IsPlaying()
}
