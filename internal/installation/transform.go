package installation

import "github.com/go-gl/mathgl/mgl32"

// Model returns the cloud's object matrix: rotation about x, then y, then a uniform zoom.
func (c *CameraState) Model() mgl32.Mat4 {
	z := float32(c.Zoom)
	return mgl32.HomogRotate3DX(float32(c.RotX)).
		Mul4(mgl32.HomogRotate3DY(float32(c.RotY))).
		Mul4(mgl32.Scale3D(z, z, z))
}

// ViewProjection returns the fixed viewer: a perspective lens looking down -z from CameraDist.
func ViewProjection(aspect float32) (view, proj mgl32.Mat4) {
	if aspect <= 0 {
		aspect = float32(WindowWidth) / float32(WindowHeight)
	}
	view = mgl32.Translate3D(0, 0, -CameraDist)
	proj = mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)
	return view, proj
}

// PointScale converts world point size to pixels at unit depth for a framebuffer of height fbH.
func PointScale(fbH int) float32 {
	return float32(fbH) * 0.5
}
