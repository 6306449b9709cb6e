package mic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/cwbudde/wav"
)

func TestCaptureArgs(t *testing.T) {
	tests := []struct {
		backend Backend
		device  string
		want    string
	}{
		{BackendPulse, "mic0", "--device=mic0"},
		{BackendPipeWire, "", "-"},
		{BackendALSA, "hw:1,0", "hw:1,0"},
		{BackendSoX, "", "signed"},
	}
	for _, tt := range tests {
		args := captureArgs(tt.backend, tt.device)
		if !slices.Contains(args, tt.want) {
			t.Errorf("%s: expected %q in %v", tt.backend, tt.want, args)
		}
	}
	if captureArgs(BackendMock, "") != nil {
		t.Error("expected no args for the mock backend")
	}
}

func TestLookupBackendUnsupported(t *testing.T) {
	if _, err := LookupBackend(BackendMock, ""); err == nil {
		t.Error("expected error for a backend without a binary")
	}
}

func TestNewSourceMock(t *testing.T) {
	src, err := NewSource(Config{Backend: "MOCK"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if src.Name() != "mock" {
		t.Errorf("expected mock, got %s", src.Name())
	}
	if _, err := NewSource(Config{Backend: "jack"}, nil); err == nil {
		t.Error("expected unsupported backend error")
	}
}

func TestDetectBackend(t *testing.T) {
	bc, err := DetectBackend("")
	if errors.Is(err, ErrNoCaptureBackend) {
		t.Skip("no recorder installed")
	}
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("detected %s at %s", bc.Type, bc.Path)
}

func TestListenerNeedsFullWindow(t *testing.T) {
	m := NewMockSource(MockConfig{}, nil)
	l, err := NewListener(m, DefaultAnalyserConfig())
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]uint8, BinCount)
	if l.ByteFrequencyData(dst) {
		t.Error("expected no frame before any capture")
	}
	m.Push(make([]float64, FFTSize-1))
	if l.ByteFrequencyData(dst) {
		t.Error("expected no frame with a partial window")
	}
	m.Push([]float64{0})
	if !l.ByteFrequencyData(dst) {
		t.Error("expected a frame with a full window")
	}
}

func TestMockSourceStartStop(t *testing.T) {
	var tapped int
	m := NewMockSource(MockConfig{Frequency: 440, Amplitude: 0.5, Block: 5 * time.Millisecond,
		Tap: func(s []float64) { tapped += len(s) }}, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, FFTSize)
	if n := m.Samples(buf); n != FFTSize {
		t.Errorf("expected a primed window, got %d", n)
	}
	time.Sleep(20 * time.Millisecond)
	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
	if tapped <= FFTSize {
		t.Errorf("expected generated blocks after the primer, got %d samples", tapped)
	}
}

func TestMockBursts(t *testing.T) {
	m := NewMockSource(MockConfig{BurstEvery: 100 * time.Millisecond, BurstLevel: 0.8}, nil)
	quiet := m.generate(SampleRate / 10)
	for _, v := range quiet {
		if v != 0 {
			t.Fatal("expected silence before the first burst")
		}
	}
	burst := m.generate(SampleRate / 100)
	peak := 0.0
	for _, v := range burst {
		peak = max(peak, v)
	}
	if peak < 0.1 {
		t.Errorf("expected a burst, peak %v", peak)
	}
}

func TestRecorderWritesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mic.wav")
	r, err := NewRecorder(path, SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	r.Write(tone(8, 0.5))
	r.Write(tone(8, 2)) // clipped
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if r.Frames() != 2*FFTSize {
		t.Errorf("expected %d frames, got %d", 2*FFTSize, r.Frames())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("expected a valid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format.SampleRate != SampleRate || buf.Format.NumChannels != 1 {
		t.Errorf("unexpected format %+v", buf.Format)
	}
	if len(buf.Data) != 2*FFTSize {
		t.Errorf("expected %d samples, got %d", 2*FFTSize, len(buf.Data))
	}
}
