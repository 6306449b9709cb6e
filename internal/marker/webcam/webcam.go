// Package webcam segments two colored fingertip markers from a camera with OpenCV.
package webcam

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"ambient/internal/installation"
	"ambient/internal/marker"
)

// HSVRange bounds one marker color. OpenCV hue runs 0..180.
type HSVRange struct {
	Low, High [3]float64
}

func (r HSVRange) scalars() (gocv.Scalar, gocv.Scalar) {
	return gocv.NewScalar(r.Low[0], r.Low[1], r.Low[2], 0),
		gocv.NewScalar(r.High[0], r.High[1], r.High[2], 0)
}

type Config struct {
	Device int
	Index  HSVRange // marker on the index fingertip
	Thumb  HSVRange // marker on the thumb tip
}

// DefaultConfig tracks a green index marker and a magenta thumb marker.
func DefaultConfig(device int) Config {
	return Config{
		Device: device,
		Index:  HSVRange{Low: [3]float64{40, 80, 60}, High: [3]float64{80, 255, 255}},
		Thumb:  HSVRange{Low: [3]float64{140, 80, 60}, High: [3]float64{170, 255, 255}},
	}
}

// Camera implements marker.Detector on a local video device.
type Camera struct {
	mu   sync.Mutex
	cfg  Config
	cap  *gocv.VideoCapture
	img  gocv.Mat
	hsv  gocv.Mat
	mask gocv.Mat
}

// Open grabs the device. Failure wraps installation.ErrPermissionDenied since a
// busy or refused camera looks the same from here.
func Open(cfg Config) (*Camera, error) {
	vc, err := gocv.VideoCaptureDevice(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w: %v", cfg.Device, installation.ErrPermissionDenied, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, installation.ErrPermissionDenied)
	}
	return &Camera{
		cfg:  cfg,
		cap:  vc,
		img:  gocv.NewMat(),
		hsv:  gocv.NewMat(),
		mask: gocv.NewMat(),
	}, nil
}

func (c *Camera) Detect() (marker.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cap == nil {
		return marker.Frame{}, fmt.Errorf("camera closed")
	}
	if ok := c.cap.Read(&c.img); !ok || c.img.Empty() {
		return marker.Frame{}, marker.ErrNoFrame
	}
	gocv.CvtColor(c.img, &c.hsv, gocv.ColorBGRToHSV)
	return marker.Frame{
		Width:  c.img.Cols(),
		Height: c.img.Rows(),
		Index:  c.blob(c.cfg.Index),
		Thumb:  c.blob(c.cfg.Thumb),
	}, nil
}

// blob returns the centroid and pixel area of everything inside r.
func (c *Camera) blob(r HSVRange) marker.Blob {
	lo, hi := r.scalars()
	gocv.InRangeWithScalar(c.hsv, lo, hi, &c.mask)
	m := gocv.Moments(c.mask, true)
	area := m["m00"]
	if area <= 0 {
		return marker.Blob{}
	}
	return marker.Blob{Area: area, X: m["m10"] / area, Y: m["m01"] / area}
}

func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.cap = nil
	c.img.Close()
	c.hsv.Close()
	c.mask.Close()
	return err
}
