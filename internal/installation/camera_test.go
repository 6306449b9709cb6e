package installation

import (
	"math"
	"testing"
)

func TestCameraMapping(t *testing.T) {
	tests := []struct {
		name             string
		hand             HandLandmarks
		rotX, rotY, zoom float64
	}{
		{"centre", HandLandmarks{IndexTip: Point{0.5, 0.5}, ThumbTip: Point{0.5, 0.7}}, 0, 0, 1.0},
		{"corner", HandLandmarks{IndexTip: Point{1, 1}, ThumbTip: Point{1, 0.8}}, math.Pi / 2, math.Pi, 1.0},
		{"wide pinch clamps high", HandLandmarks{IndexTip: Point{0.5, 0.5}, ThumbTip: Point{0.5, 1.5}}, 0, 0, MaxZoom},
		{"closed pinch clamps low", HandLandmarks{IndexTip: Point{0.5, 0.5}, ThumbTip: Point{0.51, 0.5}}, 0, 0, MinZoom},
		{"origin", HandLandmarks{IndexTip: Point{0, 0}, ThumbTip: Point{0.3, 0.4}}, -math.Pi / 2, -math.Pi, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCameraState()
			c.ApplyHand(tt.hand)
			if math.Abs(c.TargetRotX-tt.rotX) > 1e-9 {
				t.Errorf("expected rotX %v, got %v", tt.rotX, c.TargetRotX)
			}
			if math.Abs(c.TargetRotY-tt.rotY) > 1e-9 {
				t.Errorf("expected rotY %v, got %v", tt.rotY, c.TargetRotY)
			}
			if math.Abs(c.TargetZoom-tt.zoom) > 1e-9 {
				t.Errorf("expected zoom %v, got %v", tt.zoom, c.TargetZoom)
			}
			if !c.HandDetected {
				t.Error("expected hand detected")
			}
		})
	}
}

func TestCameraNoHandResets(t *testing.T) {
	c := NewCameraState()
	c.Apply(HandPose(HandLandmarks{IndexTip: Point{0.9, 0.1}, ThumbTip: Point{0.5, 0.5}}))
	c.Apply(NoHand)
	if c.TargetRotX != 0 || c.TargetRotY != 0 || c.TargetZoom != NeutralZoom {
		t.Errorf("expected neutral targets, got %v %v %v", c.TargetRotX, c.TargetRotY, c.TargetZoom)
	}
	if c.HandDetected {
		t.Error("expected no hand")
	}
}

func TestCameraSmoothing(t *testing.T) {
	c := NewCameraState()
	c.ApplyHand(HandLandmarks{IndexTip: Point{1, 0.5}, ThumbTip: Point{1, 0.5}})
	c.step(CamLerp)
	if want := math.Pi * CamLerp; math.Abs(c.RotY-want) > 1e-9 {
		t.Errorf("expected rotY %v after one step, got %v", want, c.RotY)
	}
	for i := 0; i < 300; i++ {
		c.step(CamLerp)
	}
	if math.Abs(c.RotY-math.Pi) > 1e-6 || math.Abs(c.Zoom-MinZoom) > 1e-6 {
		t.Errorf("expected convergence, got rotY %v zoom %v", c.RotY, c.Zoom)
	}
	if c.Zoom < MinZoom || c.Zoom > MaxZoom {
		t.Errorf("zoom %v outside limits", c.Zoom)
	}
}
