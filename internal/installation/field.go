package installation

import (
	"fmt"
	"math"
)

// ParticleField holds the live and target buffers of a fixed-size point cloud.
// All four slices have length 3*N for the lifetime of the field; live slices are
// mutated in place and never reallocated.
type ParticleField struct {
	n int

	pos, col             []float32
	targetPos, targetCol []float32

	dirty bool
}

// NewParticleField scatters n white particles uniformly in a cube of side BootstrapSpread.
// Targets start equal to the live buffers, so nothing moves until SetTargets.
func NewParticleField(n int, r *Rand) *ParticleField {
	if n < 0 {
		n = 0
	}
	f := &ParticleField{
		n:         n,
		pos:       make([]float32, n*3),
		col:       make([]float32, n*3),
		targetPos: make([]float32, n*3),
		targetCol: make([]float32, n*3),
		dirty:     true,
	}
	for i := 0; i < n; i++ {
		idx := i * 3
		f.pos[idx] = float32(r.Centered() * BootstrapSpread)
		f.pos[idx+1] = float32(r.Centered() * BootstrapSpread)
		f.pos[idx+2] = float32(r.Centered() * BootstrapSpread)
		f.col[idx] = White.R
		f.col[idx+1] = White.G
		f.col[idx+2] = White.B
	}
	copy(f.targetPos, f.pos)
	copy(f.targetCol, f.col)
	return f
}

// Len returns the particle count N.
func (f *ParticleField) Len() int { return f.n }

// Positions returns the live xyz buffer. Callers must not retain it across ticks for writing.
func (f *ParticleField) Positions() []float32 { return f.pos }

// Colors returns the live rgb buffer.
func (f *ParticleField) Colors() []float32 { return f.col }

// Targets returns the current target buffers.
func (f *ParticleField) Targets() (pos, col []float32) { return f.targetPos, f.targetCol }

// SetTargets copies a generated cloud into the target buffers. On a size mismatch
// the field is left untouched.
func (f *ParticleField) SetTargets(c Cloud) error {
	if len(c.Positions) != f.n*3 || len(c.Colors) != f.n*3 {
		return fmt.Errorf("set targets: cloud has %d/%d values, field needs %d",
			len(c.Positions), len(c.Colors), f.n*3)
	}
	copy(f.targetPos, c.Positions)
	copy(f.targetCol, c.Colors)
	return nil
}

// TakeDirty reports whether the live buffers changed since the last call and clears the flag.
func (f *ParticleField) TakeDirty() bool {
	d := f.dirty
	f.dirty = false
	return d
}

// Smoother advances the live field and camera toward their targets once per frame.
type Smoother struct {
	Field  *ParticleField
	Camera *CameraState

	elapsed float64
}

func NewSmoother(field *ParticleField, cam *CameraState) *Smoother {
	return &Smoother{Field: field, Camera: cam}
}

// Elapsed returns the accumulated tick time in seconds.
func (s *Smoother) Elapsed() float64 { return s.elapsed }

// Tick runs one frame of interpolation. Camera first, then particles.
func (s *Smoother) Tick(dt float64) {
	if dt > 0 {
		s.elapsed += dt
	}
	sway := true
	if s.Camera != nil {
		s.Camera.step(CamLerp)
		sway = !s.Camera.HandDetected
	}

	f := s.Field
	if f == nil {
		return
	}
	const rate = float32(PosLerp)
	phase := s.elapsed * SwayFrequency
	pos, col := f.pos, f.col
	tp, tc := f.targetPos, f.targetCol
	for i := 0; i < f.n; i++ {
		idx := i * 3
		pos[idx] += (tp[idx] - pos[idx]) * rate
		pos[idx+1] += (tp[idx+1] - pos[idx+1]) * rate
		pos[idx+2] += (tp[idx+2] - pos[idx+2]) * rate
		col[idx] += (tc[idx] - col[idx]) * rate
		col[idx+1] += (tc[idx+1] - col[idx+1]) * rate
		col[idx+2] += (tc[idx+2] - col[idx+2]) * rate

		if sway {
			pos[idx+1] += float32(math.Sin(phase+float64(pos[idx])) * SwayAmplitude)
		}
	}
	f.dirty = true
}
