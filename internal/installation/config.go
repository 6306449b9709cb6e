package installation

import "time"

// Particle field.
const (
	DefaultParticleCount = 30000
	ParticleSize         = 0.07
	BootstrapSpread      = 15.0 // side of the cube live positions start in
)

// Interpolation rates per frame.
const (
	PosLerp = 0.05 // positions and colours
	CamLerp = 0.1

	SwayAmplitude = 0.002
	SwayFrequency = 2.0
)

// Camera limits and neutral pose.
const (
	MinZoom     = 0.3
	MaxZoom     = 2.5
	NeutralZoom = 1.0
	PinchToZoom = 5.0 // zoom per unit of normalized fingertip distance
)

// Viewer.
const (
	WindowWidth   = 1280
	WindowHeight  = 720
	FieldOfView   = 75.0 // degrees
	CameraDist    = 6.5
	NearPlane     = 0.1
	FarPlane      = 100.0
	FogDensity    = 0.03
	PointOpacity  = 0.85
	MaxFrameDelta = 0.1
)

// Soundscape.
const (
	MasterVolume = 0.5
	FadeStep     = 0.05
	FadeInterval = 50 * time.Millisecond
)

// Onset detection.
const (
	OnsetStartBin      = 5
	OnsetWarmupFrames  = 50
	OnsetArmFrames     = 30
	OnsetRefractory    = 1000 * time.Millisecond
	OnsetSpikeRatio    = 1.2
	OnsetTriggerRatio  = 1.3
	OnsetAbsoluteFloor = 20.0
	OnsetFlash         = 150 * time.Millisecond
)

// Control queues.
const (
	CommandQueue = 16
	PoseQueue    = 64
	PoseTimeout  = time.Second // a tracker silent this long counts as no hand
)

// Audio output.
const (
	SampleRate   = 44100
	ChannelCount = 2
)
