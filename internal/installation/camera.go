package installation

import "math"

// Point is a normalized image coordinate, both axes nominally in [0,1].
type Point struct {
	X, Y float64
}

// HandLandmarks carries the two fingertips the gesture mapper reads.
type HandLandmarks struct {
	IndexTip Point
	ThumbTip Point
}

// PoseEvent is one report from the hand tracker. Detected false means no hand.
type PoseEvent struct {
	Detected bool
	Hand     HandLandmarks
}

// NoHand is the tracker report for an empty frame.
var NoHand = PoseEvent{}

// HandPose wraps landmarks into a detected PoseEvent.
func HandPose(h HandLandmarks) PoseEvent {
	return PoseEvent{Detected: true, Hand: h}
}

// CameraState is the object transform: rotation about x and y plus a uniform zoom.
// Target* is written by the gesture mapper, the live fields by the smoother.
type CameraState struct {
	TargetRotX, TargetRotY, TargetZoom float64
	RotX, RotY, Zoom                   float64

	HandDetected bool
}

// NewCameraState returns a camera at rest in the neutral pose.
func NewCameraState() *CameraState {
	c := &CameraState{}
	c.Neutral()
	c.RotX, c.RotY, c.Zoom = c.TargetRotX, c.TargetRotY, c.TargetZoom
	return c
}

// Neutral resets the targets to rot 0 and zoom 1.
func (c *CameraState) Neutral() {
	c.TargetRotX = 0
	c.TargetRotY = 0
	c.TargetZoom = NeutralZoom
}

// Apply dispatches a tracker report.
func (c *CameraState) Apply(p PoseEvent) {
	if p.Detected {
		c.ApplyHand(p.Hand)
		return
	}
	c.ApplyNoHand()
}

// ApplyHand maps the index tip to rotation and the pinch distance to zoom.
func (c *CameraState) ApplyHand(h HandLandmarks) {
	c.HandDetected = true
	c.TargetRotY = (h.IndexTip.X - 0.5) * 2 * math.Pi
	c.TargetRotX = (h.IndexTip.Y - 0.5) * math.Pi

	dist := math.Hypot(h.ThumbTip.X-h.IndexTip.X, h.ThumbTip.Y-h.IndexTip.Y)
	c.TargetZoom = clampF(dist*PinchToZoom, MinZoom, MaxZoom)
}

func (c *CameraState) ApplyNoHand() {
	c.HandDetected = false
	c.Neutral()
}

// step moves the live transform toward the targets by rate.
func (c *CameraState) step(rate float64) {
	c.RotX = lerpF(c.RotX, c.TargetRotX, rate)
	c.RotY = lerpF(c.RotY, c.TargetRotY, rate)
	c.Zoom = clampF(lerpF(c.Zoom, c.TargetZoom, rate), MinZoom, MaxZoom)
}
