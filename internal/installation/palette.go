package installation

// Color is a linear RGB triple, channels nominally in [0,1].
type Color struct {
	R, G, B float32
}

var White = Color{R: 1, G: 1, B: 1}

var Palette = struct {
	SeedDark   Color // sunflower centre at the middle; brightens toward the rim
	PetalInner Color
	PetalOuter Color
	BuddhaHead Color
	BuddhaBody Color
	BuddhaBase Color
	Planet     Color
	Ring       Color
}{
	SeedDark:   Color{R: 0.3, G: 0.15, B: 0},
	PetalInner: Color{R: 1.0, G: 0.9, B: 0},
	PetalOuter: Color{R: 1.0, G: 0.7, B: 0},
	BuddhaHead: Color{R: 1.0, G: 0.8, B: 0.2},
	BuddhaBody: Color{R: 1.0, G: 0.4, B: 0},
	BuddhaBase: Color{R: 0.8, G: 0.3, B: 0},
	Planet:     Color{R: 0.8, G: 0.6, B: 0.3},
	Ring:       Color{R: 0.6, G: 0.7, B: 1.0},
}

// helixPalette colours the DNA strands violet to red.
var helixPalette = [helixStrands]Color{
	{R: 0.58, G: 0, B: 0.82},
	{R: 0.29, G: 0, B: 0.51},
	{R: 0, G: 0, B: 1},
	{R: 0, G: 1, B: 0},
	{R: 1, G: 1, B: 0},
	{R: 1, G: 0.5, B: 0},
	{R: 1, G: 0, B: 0},
}
