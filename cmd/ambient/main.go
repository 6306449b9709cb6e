// Command ambient runs the particle installation: a morphing point cloud steered
// by hand pose, with a finger snap toggling the per-shape soundtrack.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ambient/internal/control"
	"ambient/internal/desktop"
	"ambient/internal/installation"
	alog "ambient/internal/log"
	"ambient/internal/marker"
	"ambient/internal/marker/webcam"
	"ambient/internal/mic"
)

func main() {
	s := parseFlags()
	if err := s.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	logger := alog.Init(s.LogLevel, s.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, s, logger); err != nil {
		logger.Error("ambient stopped", "err", err)
		os.Exit(1)
	}
}

// parseFlags layers command line flags over the environment settings.
func parseFlags() installation.Settings {
	s := installation.LoadSettings()
	flag.IntVar(&s.Particles, "particles", s.Particles, "number of particles")
	flag.Uint64Var(&s.Seed, "seed", s.Seed, "random seed, 0 seeds from the clock")
	flag.StringVar(&s.AssetDir, "assets", s.AssetDir, "soundtrack directory")
	flag.Float64Var(&s.MasterVolume, "volume", s.MasterVolume, "master volume 0..1")
	flag.IntVar(&s.Width, "width", s.Width, "window width")
	flag.IntVar(&s.Height, "height", s.Height, "window height")
	flag.StringVar(&s.Shape, "shape", s.Shape, "start shape: heart, sunflower, buddha, dna, saturn")
	flag.StringVar(&s.Listen, "listen", s.Listen, "control server address, empty disables it")
	flag.StringVar(&s.MicBackend, "mic", s.MicBackend, "capture backend: auto, mock, parec, pw-record, arecord, sox")
	flag.StringVar(&s.MicDevice, "mic-device", s.MicDevice, "capture device name")
	flag.StringVar(&s.RecordMic, "record-mic", s.RecordMic, "write captured audio to this WAV file")
	flag.IntVar(&s.Camera, "camera", s.Camera, "webcam index for the marker tracker")
	flag.BoolVar(&s.Marker, "marker", s.Marker, "track colored fingertip markers with the webcam")
	flag.StringVar(&s.LogLevel, "log-level", s.LogLevel, "debug, info, warn or error")
	flag.StringVar(&s.Env, "env", s.Env, "production switches logs to JSON")
	flag.Parse()
	return s
}

func run(ctx context.Context, s installation.Settings, logger *slog.Logger) error {
	dir, err := s.ResolvedAssetDir()
	if err != nil {
		return err
	}
	tracks := installation.LoadTracks(dir, logger)
	defer func() {
		for _, ts := range tracks {
			ts.Close()
		}
	}()

	var decks map[installation.Shape]installation.Deck
	audio, err := desktop.InitAudio()
	if err != nil {
		logger.Warn("audio init failed, continuing without sound", "err", err)
	} else {
		defer audio.Close()
		decks = audio.Decks(tracks)
	}

	var tap func([]float64)
	if s.RecordMic != "" {
		rec, err := mic.NewRecorder(s.RecordMic, mic.SampleRate)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Warn("mic recording", "err", err)
			}
			logger.Info("mic recording saved", "path", s.RecordMic, "frames", rec.Frames())
		}()
		tap = rec.Write
	}
	micCfg := mic.Config{Backend: mic.Backend(s.MicBackend), Device: s.MicDevice, Tap: tap}
	startMic := func() (installation.SpectrumSource, error) {
		l, err := mic.Listen(ctx, micCfg, logger.With("component", "mic"))
		if err != nil {
			return nil, err
		}
		return l, nil
	}

	var srv *control.Server
	app, err := installation.NewApp(installation.AppOptions{
		Particles: s.Particles,
		Seed:      s.Seed,
		Shape:     s.InitialShape(),
		Decks:     decks,
		Master:    s.MasterVolume,
		StartMic:  startMic,
		Bins:      mic.BinCount,
		Logger:    logger,
		OnStatus: func(st installation.Status) {
			if srv != nil {
				srv.Publish(st)
			}
		},
	})
	if err != nil {
		return err
	}

	if s.Listen != "" {
		srv = control.NewServer(app, logger)
		go func() {
			logger.Info("control server listening", "addr", s.Listen)
			if err := srv.Serve(ctx, s.Listen); err != nil {
				logger.Error("control server", "err", err)
			}
		}()
	}

	if s.Marker {
		cam, err := webcam.Open(webcam.DefaultConfig(s.Camera))
		if err != nil {
			app.ReportTracker(installation.TrackerBlocked, err)
		} else {
			app.ReportTracker(installation.TrackerActive, nil)
			tr := marker.NewTracker(cam, marker.DefaultMapping(), 0, logger)
			go func() {
				if err := tr.Run(ctx, app.SubmitPose); err != nil {
					app.ReportTracker(installation.TrackerBlocked, err)
				}
			}()
		}
	}

	return desktop.Run(ctx, app, desktop.Options{Width: s.Width, Height: s.Height, Logger: logger})
}
