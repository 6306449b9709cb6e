package installation

import "math"

// splitmix64 is a fast, high-quality 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerpF moves cur toward target by the fraction rate.
func lerpF(cur, target, rate float64) float64 {
	return cur + (target-cur)*rate
}

// rotateYZ applies a rotation about the x axis to the (y, z) pair.
func rotateYZ(y, z, angle float64) (float64, float64) {
	c, s := math.Cos(angle), math.Sin(angle)
	return y*c - z*s, y*s + z*c
}

// Rand is a tiny RNG (xorshift64*).
type Rand struct {
	s uint64
}

func NewRand(seed uint64) *Rand {
	seed = splitmix64(seed)
	if seed == 0 {
		seed = 1
	}
	return &Rand{s: seed}
}

func (r *Rand) NextU64() uint64 {
	x := r.s
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.s = x
	return x * 2685821657736338717
}

// Float64 returns a uniform value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.NextU64()>>11) * (1.0 / (1 << 53))
}

func (r *Rand) RangeF(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + (max-min)*r.Float64()
}

// Angle returns a uniform angle in [0, 2π).
func (r *Rand) Angle() float64 {
	return r.Float64() * 2 * math.Pi
}

// Centered returns a uniform value in [-0.5, 0.5).
func (r *Rand) Centered() float64 {
	return r.Float64() - 0.5
}
