package installation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestModelNeutralIsIdentity(t *testing.T) {
	c := NewCameraState()
	if !c.Model().ApproxEqual(mgl32.Ident4()) {
		t.Errorf("expected identity, got %v", c.Model())
	}
}

func TestModelRotationAndZoom(t *testing.T) {
	c := NewCameraState()
	c.RotY = math.Pi / 2
	c.Zoom = 2
	p := c.Model().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	// A quarter turn about y sends +x to -z, then zoom doubles it.
	want := mgl32.Vec4{0, 0, -2, 1}
	if !p.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("expected %v, got %v", want, p)
	}
}

func TestViewProjectionCentre(t *testing.T) {
	view, proj := ViewProjection(16.0 / 9.0)
	clip := proj.Mul4(view).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(clip.X())) > 1e-6 || math.Abs(float64(clip.Y())) > 1e-6 {
		t.Errorf("expected origin on the optical axis, got %v", clip)
	}
	if w := clip.W(); math.Abs(float64(w)-CameraDist) > 1e-5 {
		t.Errorf("expected w = camera distance, got %v", w)
	}
	ndcZ := clip.Z() / clip.W()
	if ndcZ <= -1 || ndcZ >= 1 {
		t.Errorf("origin outside depth range: %v", ndcZ)
	}
}
