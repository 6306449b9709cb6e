package installation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Settings is the runtime configuration. Defaults, then AMBIENT_* environment, then flags.
type Settings struct {
	Particles    int
	Seed         uint64 // 0 means seed from the clock
	AssetDir     string
	MasterVolume float64
	Width        int
	Height       int
	Shape        string

	Listen string // control server address, empty disables it

	MicBackend string // auto, mock, parec, pw-record, arecord, sox
	MicDevice  string
	RecordMic  string // optional WAV path for capture calibration

	Camera int  // webcam index for the marker tracker
	Marker bool // enable the marker tracker

	LogLevel string
	Env      string
}

func DefaultSettings() Settings {
	return Settings{
		Particles:    DefaultParticleCount,
		AssetDir:     "assets",
		MasterVolume: MasterVolume,
		Width:        WindowWidth,
		Height:       WindowHeight,
		Shape:        ShapeHeart.String(),
		Listen:       "127.0.0.1:8090",
		MicBackend:   "auto",
		LogLevel:     "info",
		Env:          "development",
	}
}

// LoadSettings returns defaults overridden by the process environment.
func LoadSettings() Settings {
	s := DefaultSettings()
	s.ApplyEnv(os.Getenv)
	return s
}

// ApplyEnv overrides fields from AMBIENT_* variables. Unparsable values are ignored.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := getenv("AMBIENT_PARTICLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Particles = n
		}
	}
	if v := getenv("AMBIENT_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			s.Seed = n
		}
	}
	if v := getenv("AMBIENT_ASSETS"); v != "" {
		s.AssetDir = v
	}
	// Volume is given in percent, like the other audio tools.
	if v := getenv("AMBIENT_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MasterVolume = clampF(float64(n)/100, 0, 1)
		}
	}
	if v := getenv("AMBIENT_SHAPE"); v != "" {
		s.Shape = v
	}
	if v, ok := lookup(getenv, "AMBIENT_LISTEN"); ok {
		s.Listen = v
	}
	if v := getenv("AMBIENT_MIC"); v != "" {
		s.MicBackend = v
	}
	if v := getenv("AMBIENT_MIC_DEVICE"); v != "" {
		s.MicDevice = v
	}
	if v := getenv("AMBIENT_RECORD_MIC"); v != "" {
		s.RecordMic = v
	}
	if v := getenv("AMBIENT_CAMERA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Camera = n
		}
	}
	if v := getenv("AMBIENT_MARKER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Marker = b
		}
	}
	if v := getenv("AMBIENT_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := getenv("AMBIENT_ENV"); v != "" {
		s.Env = v
	}
}

// lookup treats "-" as an explicit empty value so a default can be switched off.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	switch v {
	case "":
		return "", false
	case "-":
		return "", true
	}
	return v, true
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	if s.Particles < 0 {
		errs = append(errs, fmt.Errorf("particles must be >= 0, got %d", s.Particles))
	}
	if s.MasterVolume < 0 || s.MasterVolume > 1 {
		errs = append(errs, fmt.Errorf("volume must be in [0,1], got %v", s.MasterVolume))
	}
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", s.Width, s.Height))
	}
	if _, err := ParseShape(s.Shape); err != nil {
		errs = append(errs, err)
	}
	if s.Camera < 0 {
		errs = append(errs, fmt.Errorf("camera index must be >= 0, got %d", s.Camera))
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", s.LogLevel))
	}
	return errors.Join(errs...)
}

// InitialShape returns the parsed start shape, heart when invalid.
func (s Settings) InitialShape() Shape {
	sh, err := ParseShape(s.Shape)
	if err != nil {
		return ShapeHeart
	}
	return sh
}

// ResolvedAssetDir expands a leading ~ in AssetDir.
func (s Settings) ResolvedAssetDir() (string, error) {
	dir, err := homedir.Expand(s.AssetDir)
	if err != nil {
		return "", fmt.Errorf("asset dir: %w", err)
	}
	return dir, nil
}
