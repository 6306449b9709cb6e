package mic

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// AnalyserConfig mirrors the browser AnalyserNode knobs the detector thresholds
// were tuned against.
type AnalyserConfig struct {
	FFTSize   int
	Smoothing float64 // time constant in [0,1)
	MinDB     float64
	MaxDB     float64
}

func DefaultAnalyserConfig() AnalyserConfig {
	return AnalyserConfig{FFTSize: FFTSize, Smoothing: 0.1, MinDB: -100, MaxDB: -30}
}

// Analyser turns blocks of time-domain samples into FFTSize/2 byte magnitudes:
// Blackman window, |X|/N, exponential smoothing, then dB mapped linearly onto 0..255.
type Analyser struct {
	cfg     AnalyserConfig
	forward func(dst []complex128, src []float64)
	window  []float64
	in      []float64
	freq    []complex128
	smooth  []float64
}

func NewAnalyser(cfg AnalyserConfig) (*Analyser, error) {
	if cfg.FFTSize < 32 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("analyser: fft size %d is not a power of two >= 32", cfg.FFTSize)
	}
	if cfg.Smoothing < 0 || cfg.Smoothing >= 1 {
		return nil, fmt.Errorf("analyser: smoothing %v outside [0,1)", cfg.Smoothing)
	}
	if cfg.MaxDB <= cfg.MinDB {
		return nil, fmt.Errorf("analyser: max dB %v must exceed min dB %v", cfg.MaxDB, cfg.MinDB)
	}
	plan, err := algofft.NewPlanReal64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("analyser: fft plan: %w", err)
	}
	n := cfg.FFTSize
	a := &Analyser{
		cfg: cfg,
		forward: func(dst []complex128, src []float64) {
			plan.Forward(dst, src)
		},
		window: blackman(n),
		in:     make([]float64, n),
		freq:   make([]complex128, n/2+1),
		smooth: make([]float64, n/2),
	}
	return a, nil
}

// blackman returns the classic a=0.16 Blackman window of length n.
func blackman(n int) []float64 {
	const alpha = 0.16
	a0, a1, a2 := (1-alpha)/2, 0.5, alpha/2
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

// Bins returns the output length.
func (a *Analyser) Bins() int { return len(a.smooth) }

// Process analyses the last FFTSize samples of block and writes byte magnitudes
// into dst, which must hold Bins values. Shorter blocks are zero-padded at the front.
func (a *Analyser) Process(block []float64, dst []uint8) {
	n := len(a.in)
	if len(block) > n {
		block = block[len(block)-n:]
	}
	off := n - len(block)
	for i := 0; i < off; i++ {
		a.in[i] = 0
	}
	for i, v := range block {
		a.in[off+i] = v * a.window[off+i]
	}
	a.forward(a.freq, a.in)

	tau := a.cfg.Smoothing
	scale := 255 / (a.cfg.MaxDB - a.cfg.MinDB)
	for k := range a.smooth {
		mag := cmplx.Abs(a.freq[k]) / float64(n)
		a.smooth[k] = tau*a.smooth[k] + (1-tau)*mag
		if k >= len(dst) {
			continue
		}
		if a.smooth[k] <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smooth[k])
		v := math.Floor(scale * (db - a.cfg.MinDB))
		dst[k] = uint8(max(0, min(255, v)))
	}
}

// Reset clears the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smooth)
}
