package installation

import (
	"fmt"
	"math"
	"strings"
)

// Shape selects one of the fixed point-cloud themes.
type Shape int

const (
	ShapeHeart Shape = iota
	ShapeSunflower
	ShapeBuddha
	ShapeDNA
	ShapeSaturn

	shapeCount
)

var shapeNames = [shapeCount]string{"heart", "sunflower", "buddha", "dna", "saturn"}

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

func (s Shape) Valid() bool { return s >= 0 && s < shapeCount }

// Shapes lists every shape in selection order.
func Shapes() []Shape {
	out := make([]Shape, shapeCount)
	for i := range out {
		out[i] = Shape(i)
	}
	return out
}

// ParseShape maps a shape name (case-insensitive) to its Shape.
func ParseShape(name string) (Shape, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == key {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidShape, name)
}

// Cloud holds generated per-particle targets as flat xyz / rgb triples.
type Cloud struct {
	Positions []float32
	Colors    []float32
}

// Len returns the number of particles in the cloud.
func (c Cloud) Len() int { return len(c.Positions) / 3 }

// particleFunc places particle i of n. Strategies are independent of each other.
type particleFunc func(i, n int, r *Rand) (x, y, z float64, c Color)

var shapeStrategies = [shapeCount]particleFunc{
	ShapeHeart:     heartParticle,
	ShapeSunflower: sunflowerParticle,
	ShapeBuddha:    buddhaParticle,
	ShapeDNA:       helixParticle,
	ShapeSaturn:    saturnParticle,
}

// Generate builds target positions and colours for count particles of the given shape.
// Every call draws fresh randomness from r.
func Generate(shape Shape, count int, r *Rand) (Cloud, error) {
	if !shape.Valid() {
		return Cloud{}, fmt.Errorf("%w: %d", ErrInvalidShape, int(shape))
	}
	if count < 0 {
		return Cloud{}, fmt.Errorf("%w: negative particle count %d", ErrInvalidShape, count)
	}
	if r == nil {
		return Cloud{}, fmt.Errorf("generate %s: nil rand", shape)
	}

	place := shapeStrategies[shape]
	cloud := Cloud{
		Positions: make([]float32, count*3),
		Colors:    make([]float32, count*3),
	}
	for i := 0; i < count; i++ {
		x, y, z, c := place(i, count, r)
		idx := i * 3
		cloud.Positions[idx] = float32(x)
		cloud.Positions[idx+1] = float32(y)
		cloud.Positions[idx+2] = float32(z)
		cloud.Colors[idx] = c.R
		cloud.Colors[idx+1] = c.G
		cloud.Colors[idx+2] = c.B
	}
	return cloud, nil
}

// ---- Heart ---------------------------------------------------------------

const heartScale = 0.15

// heartParticle fills the classic parametric heart as a volume: each point is pulled
// toward the centre by a random factor, and blue rises with distance for a rim glow.
func heartParticle(_, _ int, r *Rand) (x, y, z float64, c Color) {
	t := r.Angle()
	st := math.Sin(t)
	hx := 16 * st * st * st
	hy := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)

	vol := r.Float64()
	x = hx * vol * heartScale
	y = hy * vol * heartScale
	z = r.Centered() * 3 * vol

	dist := math.Hypot(x, y)
	c = Color{R: 1, G: 0, B: float32(0.2 + dist*0.3)}
	return
}

// ---- Sunflower -----------------------------------------------------------

const (
	sunflowerSeedShare = 0.4
	goldenAngle        = 137.508 * math.Pi / 180
	seedDiskRadius     = 2.0
	seedDome           = 0.4
	petalCount         = 13
	petalBase          = 2.0
	petalInnerExtent   = 2.5
	petalOuterExtent   = 3.2
	petalCurl          = 0.1
)

func sunflowerParticle(i, n int, r *Rand) (x, y, z float64, c Color) {
	seedCount := float64(n) * sunflowerSeedShare
	fi := float64(i)

	if fi < seedCount {
		// Fibonacci disk: golden-angle steps with sqrt radius give even packing.
		angle := fi * goldenAngle
		nRad := math.Sqrt(fi / seedCount)
		rad := nRad * seedDiskRadius

		x = rad * math.Cos(angle)
		y = rad * math.Sin(angle)
		z = seedDome * (1 - nRad)

		k := float32(1 + nRad)
		c = Color{R: Palette.SeedDark.R * k, G: Palette.SeedDark.G * k, B: Palette.SeedDark.B * k}
		return
	}

	petalIdx := fi - seedCount
	totalPetal := float64(n) * (1 - sunflowerSeedShare)
	front := petalIdx < totalPetal*0.5

	angle := r.Angle()
	extent := petalInnerExtent
	if front {
		z = 0.1 - r.Float64()*0.2
		c = Palette.PetalInner
	} else {
		// Back layer is rotated half a petal so its lobes fill the front layer's gaps.
		angle += math.Pi / petalCount
		extent = petalOuterExtent
		z = -0.1 - r.Float64()*0.2
		c = Palette.PetalOuter
	}
	lobe := math.Sqrt(math.Abs(math.Sin(angle * petalCount * 0.5)))

	dist := petalBase + r.Float64()*extent*lobe
	x = dist * math.Cos(angle)
	y = dist * math.Sin(angle)
	z -= (dist - petalBase) * petalCurl
	return
}

// ---- Buddha --------------------------------------------------------------

const (
	buddhaScale  = 2.5
	buddhaOffset = -2.0
)

func buddhaParticle(_, _ int, r *Rand) (x, y, z float64, c Color) {
	const s = buddhaScale

	switch roll := r.Float64(); {
	case roll < 0.25:
		// Head. Uniform in (u, v), so the poles are denser.
		u := r.Angle()
		v := r.Float64() * math.Pi
		rad := 0.6 * s
		x = rad * math.Sin(v) * math.Cos(u)
		y = rad*math.Sin(v)*math.Sin(u) + 1.8*s
		z = rad * math.Cos(v)
		c = Palette.BuddhaHead
	case roll < 0.7:
		// Torso: a flattened cylinder whose radius ripples with height like drapery.
		theta := r.Angle()
		h := r.Float64() * 2.0 * s
		rad := (0.7 + math.Sin(h/s*3)*0.1) * s
		x = rad * math.Cos(theta)
		y = h - 0.2*s
		z = rad * math.Sin(theta) * 0.6
		c = Palette.BuddhaBody
	default:
		// Base: sqrt radius for uniform area.
		theta := r.Angle()
		rad := 1.5 * math.Sqrt(r.Float64()) * s
		x = rad * math.Cos(theta)
		y = (r.Float64()*0.5 - 0.5) * s
		z = rad * math.Sin(theta)
		c = Palette.BuddhaBase
	}
	y += buddhaOffset
	return
}

// ---- DNA -----------------------------------------------------------------

const (
	helixStrands = 7
	helixTwist   = 15 * 2 * math.Pi // total twist over the index range
	helixRadius  = 1.5
	helixHeight  = 12.0
	helixJitter  = 0.15
)

func helixParticle(i, n int, r *Rand) (x, y, z float64, c Color) {
	strand := i % helixStrands
	c = helixPalette[strand]

	frac := float64(i) / float64(n)
	t := frac * helixTwist
	offset := 2 * math.Pi * float64(strand) / helixStrands

	x = math.Cos(t+offset) * helixRadius
	z = math.Sin(t+offset) * helixRadius
	y = frac*helixHeight - helixHeight/2

	x += r.Centered() * helixJitter
	z += r.Centered() * helixJitter
	return
}

// ---- Saturn --------------------------------------------------------------

const (
	planetRadius  = 1.2
	ringInner     = 1.6
	ringWidth     = 1.8
	ringThickness = 0.1
	ringTilt      = 0.4
)

func saturnParticle(_, _ int, r *Rand) (x, y, z float64, c Color) {
	if r.Float64() < 0.6 {
		u := r.Angle()
		v := r.Float64() * math.Pi
		x = planetRadius * math.Sin(v) * math.Cos(u)
		y = planetRadius * math.Sin(v) * math.Sin(u)
		z = planetRadius * math.Cos(v)
		c = Palette.Planet
		return
	}

	ang := r.Angle()
	dist := ringInner + r.Float64()*ringWidth
	x = math.Cos(ang) * dist
	z = math.Sin(ang) * dist
	y = r.Centered() * ringThickness
	y, z = rotateYZ(y, z, ringTilt)
	c = Palette.Ring
	return
}
