package mic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"ambient/internal/installation"
)

// BackendConfig is a resolved recorder command.
type BackendConfig struct {
	Type Backend
	Path string
	Args []string
}

var rate = strconv.Itoa(SampleRate)

// captureArgs returns the recorder arguments for raw s16le mono on stdout.
func captureArgs(b Backend, device string) []string {
	switch b {
	case BackendPulse:
		args := []string{"--raw", "--format=s16le", "--rate=" + rate, "--channels=1", "--latency-msec=20"}
		if device != "" {
			args = append(args, "--device="+device)
		}
		return args
	case BackendPipeWire:
		args := []string{"--format=s16", "--rate=" + rate, "--channels=1", "--latency=20ms"}
		if device != "" {
			args = append(args, "--target="+device)
		}
		return append(args, "-")
	case BackendALSA:
		args := []string{"-t", "raw", "-f", "S16_LE", "-r", rate, "-c", "1", "-q"}
		if device != "" {
			args = append(args, "-D", device)
		}
		return args
	case BackendSoX:
		return []string{"-q", "-t", "raw", "-e", "signed", "-b", "16", "-c", "1", "-r", rate, "-"}
	}
	return nil
}

// binaries maps a backend to the executable it runs.
var binaries = map[Backend]string{
	BackendPulse:    "parec",
	BackendPipeWire: "pw-record",
	BackendALSA:     "arecord",
	BackendSoX:      "rec",
}

// detectOrder is the search order for BackendAuto.
var detectOrder = []Backend{BackendPulse, BackendPipeWire, BackendALSA, BackendSoX}

// DetectBackend returns the first recorder found on PATH.
func DetectBackend(device string) (*BackendConfig, error) {
	for _, b := range detectOrder {
		if bc, err := LookupBackend(b, device); err == nil {
			return bc, nil
		}
	}
	return nil, ErrNoCaptureBackend
}

// LookupBackend resolves one recorder on PATH.
func LookupBackend(b Backend, device string) (*BackendConfig, error) {
	bin, ok := binaries[b]
	if !ok {
		return nil, fmt.Errorf("unsupported capture backend: %s", b)
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bin, ErrNoCaptureBackend)
	}
	return &BackendConfig{Type: b, Path: path, Args: captureArgs(b, device)}, nil
}

const (
	readBlock    = 1024 // bytes per read, 10.7 ms at 48 kHz mono
	startTimeout = 2 * time.Second
)

// ExecSource reads PCM from a recorder subprocess.
type ExecSource struct {
	cfg    BackendConfig
	tap    func([]float64)
	logger *slog.Logger
	ring   *Ring

	mu      sync.Mutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	stderr  bytes.Buffer
}

func NewExecSource(cfg *BackendConfig, tap func([]float64), logger *slog.Logger) *ExecSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecSource{
		cfg:    *cfg,
		tap:    tap,
		logger: logger.With("component", "mic", "backend", cfg.Type),
		ring:   NewRing(ringSize),
	}
}

func (s *ExecSource) Name() string { return string(s.cfg.Type) }

// Start launches the recorder and waits for the first block of audio. A recorder
// that exits before producing audio is reported as a refused device.
func (s *ExecSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	cctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cctx, s.cfg.Path, s.cfg.Args...)
	s.stderr.Reset()
	cmd.Stderr = &s.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("%s stdout: %w", s.cfg.Type, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%s start: %w", s.cfg.Type, err)
	}

	first := make(chan struct{})
	s.cmd, s.cancel, s.done = cmd, cancel, make(chan struct{})
	go s.readLoop(stdout, first)

	select {
	case <-first:
	case <-s.done:
		cancel()
		_ = cmd.Wait()
		return fmt.Errorf("%s exited before audio (%s): %w",
			s.cfg.Type, bytes.TrimSpace(s.stderr.Bytes()), installation.ErrPermissionDenied)
	case <-time.After(startTimeout):
		cancel()
		<-s.done
		_ = cmd.Wait()
		return fmt.Errorf("%s produced no audio in %v: %w", s.cfg.Type, startTimeout, installation.ErrPermissionDenied)
	}
	s.running = true
	s.logger.Info("capture started", "path", s.cfg.Path)
	return nil
}

func (s *ExecSource) readLoop(r io.Reader, first chan struct{}) {
	defer close(s.done)
	raw := make([]byte, readBlock)
	samples := make([]float64, 0, readBlock/2)
	signalled := false
	carry := 0 // odd byte left over from the previous read
	for {
		n, err := r.Read(raw[carry:])
		total := carry + n
		even := total &^ 1
		if even > 0 {
			samples = pcm16ToFloat(samples, raw[:even])
			s.ring.Write(samples)
			if s.tap != nil {
				s.tap(samples)
			}
			if !signalled {
				close(first)
				signalled = true
			}
		}
		carry = total - even
		if carry == 1 {
			raw[0] = raw[even]
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("capture read", "err", err)
			}
			return
		}
	}
}

// Stop kills the recorder and waits for the reader to finish.
func (s *ExecSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	s.cancel()
	<-s.done
	_ = s.cmd.Wait()
	s.logger.Info("capture stopped")
	return nil
}

func (s *ExecSource) Samples(dst []float64) int { return s.ring.Latest(dst) }
