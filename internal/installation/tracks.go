package installation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"github.com/hajimehoshi/go-mp3"
)

// trackNames are the sound basenames under <assets>/sound, indexed by shape.
var trackNames = [shapeCount]string{"heart", "flower", "budha", "dna", "space"}

// trackExts is the lookup order when several encodings of a track exist.
var trackExts = []string{".mp3", ".ogg", ".wav"}

const resampleQuality = 4

// TrackName returns the sound basename of a shape, empty for invalid shapes.
func TrackName(sh Shape) string {
	if !sh.Valid() {
		return ""
	}
	return trackNames[sh]
}

// ResolveTrack returns the first existing soundtrack file for sh.
func ResolveTrack(assetDir string, sh Shape) (string, error) {
	if !sh.Valid() {
		return "", fmt.Errorf("resolve track: %w: %d", ErrInvalidShape, int(sh))
	}
	base := filepath.Join(assetDir, "sound", trackNames[sh])
	for _, ext := range trackExts {
		p := base + ext
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("resolve track %s: no %v file at %s: %w", sh, trackExts, base, os.ErrNotExist)
}

// TrackStream is a decoded soundtrack that loops forever, resampled to SampleRate
// and served as interleaved float32 LE stereo.
type TrackStream struct {
	Shape Shape
	Path  string

	mu     sync.Mutex
	src    beep.StreamSeekCloser
	out    beep.Streamer
	buf    [][2]float64
	frames int64 // frames served since the last rewind
}

// OpenTrack decodes the file at path by extension.
func OpenTrack(sh Shape, path string) (*TrackStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}

	var (
		src    beep.StreamSeekCloser
		format beep.Format
	)
	switch filepath.Ext(path) {
	case ".mp3":
		src, format, err = decodeMP3(f)
	case ".ogg":
		src, format, err = vorbis.Decode(f)
	case ".wav":
		src, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if src.Len() == 0 {
		src.Close()
		return nil, fmt.Errorf("decode %s: empty stream", path)
	}

	var out beep.Streamer = beep.Loop(-1, src)
	if format.SampleRate != SampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(SampleRate), out)
	}
	return &TrackStream{Shape: sh, Path: path, src: src, out: out}, nil
}

// Read fills p with whole float32 stereo frames.
func (t *TrackStream) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if cap(t.buf) < frames {
		t.buf = make([][2]float64, frames)
	}
	buf := t.buf[:frames]
	n, ok := t.out.Stream(buf)
	for i := 0; i < n; i++ {
		putStereoF32LR(p, i, buf[i][0], buf[i][1])
	}
	t.frames += int64(n)
	if !ok && n == 0 {
		if err := t.out.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return n * 8, nil
}

// Seek supports rewinding to the start only; the output loops so other positions
// have no stable meaning.
func (t *TrackStream) Seek(offset int64, whence int) (int64, error) {
	switch {
	case whence == io.SeekStart && offset == 0:
	case whence == io.SeekCurrent && offset == 0:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.frames * 8, nil
	default:
		return 0, errors.New("track: only rewind is supported")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.src.Seek(0); err != nil {
		return 0, err
	}
	t.frames = 0
	return 0, nil
}

func (t *TrackStream) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.src.Close()
}

// LoadTracks opens every shape's soundtrack under assetDir. A shape whose file is
// missing or undecodable is logged and left out.
func LoadTracks(assetDir string, logger *slog.Logger) map[Shape]*TrackStream {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[Shape]*TrackStream, shapeCount)
	for _, sh := range Shapes() {
		path, err := ResolveTrack(assetDir, sh)
		if err != nil {
			logger.Warn("soundtrack missing", "shape", sh.String(), "err", err)
			continue
		}
		ts, err := OpenTrack(sh, path)
		if err != nil {
			logger.Warn("soundtrack unreadable", "shape", sh.String(), "err", err)
			continue
		}
		logger.Debug("soundtrack loaded", "shape", sh.String(), "path", path)
		out[sh] = ts
	}
	return out
}

// ---- MP3 -----------------------------------------------------------------

// mp3Stream exposes a go-mp3 decoder (always 16-bit LE stereo) as a beep stream.
type mp3Stream struct {
	d   *mp3.Decoder
	c   io.Closer
	raw []byte
	pos int
	err error
}

func decodeMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	d, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(d.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{d: d, c: rc}, format, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	need := len(samples) * 4
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	raw := s.raw[:need]
	n, err := io.ReadFull(s.d, raw)
	frames := n / 4
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		samples[i][0] = float64(l) / math.MaxInt16
		samples[i][1] = float64(r) / math.MaxInt16
	}
	s.pos += frames
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
	}
	return frames, frames > 0
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int { return int(s.d.Length() / 4) }

func (s *mp3Stream) Position() int { return s.pos }

func (s *mp3Stream) Seek(p int) error {
	if p < 0 || p > s.Len() {
		return fmt.Errorf("mp3: seek %d out of range [0, %d]", p, s.Len())
	}
	if _, err := s.d.Seek(int64(p)*4, io.SeekStart); err != nil {
		return err
	}
	s.pos = p
	return nil
}

func (s *mp3Stream) Close() error { return s.c.Close() }

// putStereoF32LR writes independent left/right samples in [-1,1] at frame i.
func putStereoF32LR(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}
