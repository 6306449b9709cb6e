package mic

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"ambient/internal/installation"
)

// MockConfig shapes the synthetic signal. The zero value is silence.
type MockConfig struct {
	Frequency  float64 // sine tone in Hz, 0 for none
	Amplitude  float64
	Noise      float64       // uniform noise floor amplitude
	BurstEvery time.Duration // period of broadband clicks, 0 for none
	BurstLevel float64
	Block      time.Duration // generation period, 20 ms when zero
	Seed       uint64
	Tap        func([]float64)
}

// MockSource generates audio in real time without hardware.
type MockSource struct {
	cfg    MockConfig
	logger *slog.Logger
	ring   *Ring

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	rnd    *installation.Rand
	phase  float64
	clock  int // samples generated
	buffer []float64
}

func NewMockSource(cfg MockConfig, logger *slog.Logger) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Block <= 0 {
		cfg.Block = 20 * time.Millisecond
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	return &MockSource{
		cfg:    cfg,
		logger: logger.With("component", "mic", "backend", BackendMock),
		ring:   NewRing(ringSize),
		rnd:    installation.NewRand(cfg.Seed),
	}
}

func (m *MockSource) Name() string { return string(BackendMock) }

// Start primes one block synchronously and keeps generating until Stop.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.running = true
	m.Push(m.generate(FFTSize))

	cctx, cancel := context.WithCancel(ctx)
	m.cancel, m.done = cancel, make(chan struct{})
	go m.loop(cctx)
	m.logger.Info("mock capture started")
	return nil
}

func (m *MockSource) loop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.cfg.Block)
	defer ticker.Stop()
	n := int(float64(SampleRate) * m.cfg.Block.Seconds())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Push(m.generate(n))
		}
	}
}

// generate synthesizes n samples. Only the capture goroutine calls it after Start.
func (m *MockSource) generate(n int) []float64 {
	if cap(m.buffer) < n {
		m.buffer = make([]float64, n)
	}
	out := m.buffer[:n]
	step := 2 * math.Pi * m.cfg.Frequency / SampleRate
	every := int(m.cfg.BurstEvery.Seconds() * SampleRate)
	burstLen := SampleRate / 100
	for i := range out {
		v := 0.0
		if m.cfg.Frequency > 0 {
			v += m.cfg.Amplitude * math.Sin(m.phase)
			m.phase = math.Mod(m.phase+step, 2*math.Pi)
		}
		if m.cfg.Noise > 0 {
			v += m.cfg.Noise * m.rnd.RangeF(-1, 1)
		}
		if every > 0 && m.clock%every < burstLen && m.clock >= every {
			v += m.cfg.BurstLevel * m.rnd.RangeF(-1, 1)
		}
		out[i] = v
		m.clock++
	}
	return out
}

// Push feeds samples as if they had been captured.
func (m *MockSource) Push(samples []float64) {
	m.ring.Write(samples)
	if m.cfg.Tap != nil {
		m.cfg.Tap(samples)
	}
}

func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	m.cancel()
	<-m.done
	m.logger.Info("mock capture stopped")
	return nil
}

func (m *MockSource) Samples(dst []float64) int { return m.ring.Latest(dst) }
