package installation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SpectrumSource is a live analyser. ByteFrequencyData fills dst with the latest
// magnitude bins and reports false when no frame is available yet.
type SpectrumSource interface {
	ByteFrequencyData(dst []uint8) bool
}

// MicStarter opens the microphone. It may block on device permission, so the app
// calls it off the frame thread.
type MicStarter func() (SpectrumSource, error)

type CommandKind int

const (
	CmdSelectShape CommandKind = iota
	CmdToggleMute
	CmdUnlock
)

// Command is a control request queued from another goroutine.
type Command struct {
	Kind  CommandKind
	Shape Shape
	Muted *bool // forced state for CmdToggleMute, nil flips
}

type AppOptions struct {
	Particles int
	Seed      uint64
	Shape     Shape
	Decks     map[Shape]Deck
	Master    float64
	StartMic  MicStarter
	Onset     OnsetConfig
	Bins      int // analyser bin count, 256 when zero
	Logger    *slog.Logger
	Clock     func() time.Time

	// OnStatus runs on the frame thread whenever the visible status changes.
	OnStatus func(Status)
}

type trackerReport struct {
	state TrackerState
	err   error
}

type micResult struct {
	src SpectrumSource
	err error
}

// App owns every per-process object and advances them once per frame. All methods
// except Submit, SubmitPose and Status must be called from the frame thread.
type App struct {
	bus      *EventBus
	rand     *Rand
	field    *ParticleField
	camera   *CameraState
	smoother *Smoother
	sound    *Soundscape
	detector *OnsetDetector
	logger   *slog.Logger
	now      func() time.Time

	shape    Shape
	unlocked bool

	startMic MicStarter
	mic      SpectrumSource
	micState MicState
	micWait  chan micResult
	bins     []uint8

	tracker        TrackerState
	trackerMu      sync.Mutex
	pendingTracker *trackerReport // latest unapplied report

	lastOnset time.Time
	lastPose  time.Time
	fadeAcc   float64

	commands chan Command
	poses    chan PoseEvent

	onStatus func(Status)
	statusMu sync.RWMutex
	status   Status
}

// NewApp builds the field, camera, soundscape and detector and targets the start shape.
// The soundscape stays muted until Unlock.
func NewApp(opts AppOptions) (*App, error) {
	if opts.Particles < 0 {
		return nil, fmt.Errorf("new app: particle count %d", opts.Particles)
	}
	if !opts.Shape.Valid() {
		return nil, fmt.Errorf("new app: %w: %d", ErrInvalidShape, int(opts.Shape))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Onset == (OnsetConfig{}) {
		opts.Onset = DefaultOnsetConfig()
	}
	if opts.Bins <= 0 {
		opts.Bins = 256
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(opts.Clock().UnixNano())
	}
	detector, err := NewOnsetDetector(opts.Onset)
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	bus := NewEventBus()
	rnd := NewRand(opts.Seed)
	field := NewParticleField(opts.Particles, rnd)
	cam := NewCameraState()
	a := &App{
		bus:      bus,
		rand:     rnd,
		field:    field,
		camera:   cam,
		smoother: NewSmoother(field, cam),
		sound:    NewSoundscape(opts.Decks, opts.Master, bus, opts.Logger),
		detector: detector,
		logger:   opts.Logger,
		now:      opts.Clock,
		shape:    -1,
		startMic: opts.StartMic,
		micWait:  make(chan micResult, 1),
		bins:     make([]uint8, opts.Bins),
		commands: make(chan Command, CommandQueue),
		poses:    make(chan PoseEvent, PoseQueue),
		onStatus: opts.OnStatus,
	}
	bus.Subscribe(EventOnset, a.logOnset)
	bus.Subscribe(EventTrackerChanged, a.logTracker)
	if err := a.SelectShape(opts.Shape); err != nil {
		return nil, err
	}
	a.publish()
	return a, nil
}

func (a *App) Bus() *EventBus             { return a.bus }
func (a *App) Field() *ParticleField      { return a.field }
func (a *App) Camera() *CameraState       { return a.camera }
func (a *App) Soundscape() *Soundscape    { return a.sound }
func (a *App) Detector() *OnsetDetector   { return a.detector }
func (a *App) Shape() Shape               { return a.shape }
func (a *App) Unlocked() bool             { return a.unlocked }
func (a *App) MicState() MicState         { return a.micState }
func (a *App) TrackerState() TrackerState { return a.tracker }
func (a *App) Spectrum() SpectrumSource   { return a.mic }
func (a *App) Elapsed() float64           { return a.smoother.Elapsed() }

// SelectShape regenerates the target cloud and crossfades to the shape's track.
// An invalid shape leaves everything untouched.
func (a *App) SelectShape(sh Shape) error {
	cloud, err := Generate(sh, a.field.Len(), a.rand)
	if err != nil {
		return err
	}
	if err := a.field.SetTargets(cloud); err != nil {
		return err
	}
	if err := a.sound.SwitchTrack(sh); err != nil {
		return err
	}
	a.shape = sh
	a.logger.Info("shape selected", "shape", sh.String())
	a.bus.Emit(Event{Type: EventShapeChanged, Shape: sh})
	return nil
}

// ToggleMute flips mute, or forces it when muted is non-nil.
func (a *App) ToggleMute(muted *bool) {
	if muted != nil {
		a.sound.SetMuted(*muted)
		return
	}
	a.sound.ToggleMute()
}

// Unlock runs the first-gesture bootstrap once: unmute, restart the current track
// as a fresh transition and open the microphone if it is off.
func (a *App) Unlock() {
	if a.unlocked {
		return
	}
	a.unlocked = true
	a.sound.SetMuted(false)
	a.sound.ForceReset()
	if err := a.sound.SwitchTrack(a.shape); err != nil {
		a.logger.Warn("unlock playback", "err", err)
	}
	if a.micState == MicOff && a.startMic != nil {
		start := a.startMic
		go func() {
			src, err := start()
			a.micWait <- micResult{src: src, err: err}
		}()
	}
	a.logger.Info("unlocked")
}

// HandlePose applies one tracker report to the camera targets.
func (a *App) HandlePose(p PoseEvent) {
	was := a.camera.HandDetected
	a.camera.Apply(p)
	a.lastPose = a.now()
	if was != p.Detected {
		a.bus.Emit(Event{Type: EventTrackingChanged, Hand: p.Detected})
	}
}

// Submit queues a command for the next frame. It never blocks.
func (a *App) Submit(c Command) error {
	if c.Kind == CmdSelectShape && !c.Shape.Valid() {
		return fmt.Errorf("submit: %w: %d", ErrInvalidShape, int(c.Shape))
	}
	select {
	case a.commands <- c:
		return nil
	default:
		return ErrBusy
	}
}

// SubmitPose queues a tracker report for the next frame. It never blocks.
func (a *App) SubmitPose(p PoseEvent) error {
	select {
	case a.poses <- p:
		return nil
	default:
		return ErrBusy
	}
}

// ReportTracker records the hand tracker's state for the next frame. Safe from any
// goroutine; only the latest report is kept. err explains a BLOCKED state.
func (a *App) ReportTracker(state TrackerState, err error) {
	a.trackerMu.Lock()
	a.pendingTracker = &trackerReport{state: state, err: err}
	a.trackerMu.Unlock()
}

// Status returns the last published snapshot. Safe from any goroutine.
func (a *App) Status() Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

// Frame advances the installation by dt seconds: queued input, onset detection,
// fade steps, then interpolation. The caller renders afterwards.
func (a *App) Frame(dt float64) {
	if dt < 0 {
		dt = 0
	}
	now := a.now()

	a.drainCommands()
	a.drainPoses(now)
	a.pollMic()
	a.pollTracker()

	if a.mic != nil && a.mic.ByteFrequencyData(a.bins) {
		if ev, ok := a.detector.ProcessFrame(a.bins, now); ok {
			a.lastOnset = ev.At
			a.bus.Emit(Event{Type: EventOnset, Onset: ev})
			a.sound.ToggleMute()
		}
	}

	step := FadeInterval.Seconds()
	for a.fadeAcc += dt; a.fadeAcc >= step; a.fadeAcc -= step {
		a.sound.StepFades()
	}

	a.smoother.Tick(dt)
	a.publish()
}

func (a *App) drainCommands() {
	for {
		select {
		case c := <-a.commands:
			a.apply(c)
		default:
			return
		}
	}
}

func (a *App) apply(c Command) {
	switch c.Kind {
	case CmdSelectShape:
		if err := a.SelectShape(c.Shape); err != nil {
			a.logger.Warn("select shape", "err", err)
		}
	case CmdToggleMute:
		a.ToggleMute(c.Muted)
	case CmdUnlock:
		a.Unlock()
	default:
		a.logger.Warn("unknown command", "kind", int(c.Kind))
	}
}

func (a *App) drainPoses(now time.Time) {
	for {
		select {
		case p := <-a.poses:
			a.HandlePose(p)
		default:
			if a.camera.HandDetected && now.Sub(a.lastPose) > PoseTimeout {
				a.logger.Debug("tracker silent, releasing hand")
				a.HandlePose(NoHand)
			}
			return
		}
	}
}

func (a *App) pollMic() {
	select {
	case r := <-a.micWait:
		if r.err != nil {
			a.micState = MicBlocked
			a.logger.Warn("mic unavailable", "err", r.err)
		} else {
			a.mic = r.src
			a.micState = MicListening
			a.logger.Info("mic listening")
		}
		a.bus.Emit(Event{Type: EventMicChanged, Mic: a.micState})
	default:
	}
}

func (a *App) pollTracker() {
	a.trackerMu.Lock()
	r := a.pendingTracker
	a.pendingTracker = nil
	a.trackerMu.Unlock()
	if r == nil || r.state == a.tracker {
		return
	}
	a.tracker = r.state
	if r.state != TrackerActive && a.camera.HandDetected {
		a.HandlePose(NoHand)
	}
	a.bus.Emit(Event{Type: EventTrackerChanged, Tracker: r.state, Err: r.err})
}

func (a *App) logOnset(e Event) {
	a.logger.Info("snap detected", "level", fmt.Sprintf("%.1f", e.Onset.Energy), "bg", fmt.Sprintf("%.1f", e.Onset.Background))
}

func (a *App) logTracker(e Event) {
	if e.Tracker == TrackerBlocked {
		a.logger.Warn("hand tracker blocked", "err", e.Err)
		return
	}
	a.logger.Info("hand tracker", "state", e.Tracker.String())
}

func (a *App) publish() {
	st := Status{
		Shape:    a.shape.String(),
		Sound:    soundLabel(a.sound.Muted()),
		Mic:      a.micState.String(),
		System:   systemLabel(a.camera.HandDetected),
		Tracker:  a.tracker.String(),
		Playback: a.sound.State().String(),
		Unlocked: a.unlocked,
		RotX:     a.camera.TargetRotX,
		RotY:     a.camera.TargetRotY,
		Zoom:     a.camera.TargetZoom,
		Noise:    a.detector.Background(),
		Onset:    a.lastOnset,
		Flash:    !a.lastOnset.IsZero() && a.now().Sub(a.lastOnset) < OnsetFlash,
	}
	a.statusMu.Lock()
	prev := a.status
	a.status = st
	a.statusMu.Unlock()
	if a.onStatus != nil && !st.sameDisplay(prev) {
		a.onStatus(st)
	}
}
