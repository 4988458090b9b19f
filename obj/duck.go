package obj

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

// DuckState is the behavior a duck runs this tick.
type DuckState int

const (
	Wandering DuckState = iota
	Pursuing
)

func (s DuckState) String() string {
	switch s {
	case Wandering:
		return "wandering"
	case Pursuing:
		return "pursuing"
	default:
		return fmt.Sprintf("DuckState(%d)", int(s))
	}
}

const (
	// maxRedirects caps obstacle re-probes per wander tick.
	maxRedirects = 3
	gizmoRadius  = 0.1
)

var (
	WanderingColor color.Color = colornames.Gold
	PursuingColor  color.Color = colornames.Orangered

	sightClearColor   color.Color = colornames.Green
	sightBlockedColor color.Color = colornames.Red
)

var ErrInvalidDuckConfig = errors.New("obj: invalid duck config")

// DuckConfig holds the tuning values of a duck. RotateSpeed is in degrees
// per second; distances are world units.
type DuckConfig struct {
	SightDistance float64
	SensorOffset  mgl64.Vec3
	WanderTime    float64
	ProbeDistance float64
	ProbeRadius   float64
	StopDistance  float64
	RotateSpeed   float64
	WalkSpeed     float64
}

func DefaultDuckConfig() DuckConfig {
	return DuckConfig{
		SightDistance: 10,
		SensorOffset:  mgl64.Vec3{0, 0.5, 0.3},
		WanderTime:    3,
		ProbeDistance: 1.5,
		ProbeRadius:   0.25,
		StopDistance:  1,
		RotateSpeed:   180,
		WalkSpeed:     1.5,
	}
}

func (c DuckConfig) Validate() error {
	check := func(name string, v float64, allowZero bool) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (!allowZero && v == 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidDuckConfig, name, v)
		}
		return nil
	}
	for _, f := range []struct {
		name      string
		v         float64
		allowZero bool
	}{
		{"sight_distance", c.SightDistance, false},
		{"wander_time", c.WanderTime, false},
		{"probe_distance", c.ProbeDistance, true},
		{"probe_radius", c.ProbeRadius, true},
		{"stop_distance", c.StopDistance, true},
		{"rotate_speed", c.RotateSpeed, true},
		{"walk_speed", c.WalkSpeed, true},
	} {
		if err := check(f.name, f.v, f.allowZero); err != nil {
			return err
		}
	}
	return nil
}

// Duck is an agent that wanders until it can see its target and then walks
// up to it.
type Duck struct {
	Name string

	cfg     DuckConfig
	pose    Pose
	scene   Scene
	targets TargetSource
	locator *Locator
	rng     *rand.Rand
	logger  *zap.Logger
	gizmos  Gizmos

	state       DuckState
	sighting    Sighting
	wanderDir   mgl64.Vec3
	wanderTimer float64
	redirects   int
}

type DuckOption func(*Duck)

// WithRand sets the random source used for wander directions.
func WithRand(rng *rand.Rand) DuckOption {
	return func(d *Duck) {
		if rng != nil {
			d.rng = rng
		}
	}
}

func WithLogger(logger *zap.Logger) DuckOption {
	return func(d *Duck) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithGizmos(g Gizmos) DuckOption {
	return func(d *Duck) { d.gizmos = g }
}

func WithName(name string) DuckOption {
	return func(d *Duck) { d.Name = name }
}

// NewDuck spawns a duck at pose. The wander timer starts full and a first
// wander direction is drawn immediately.
func NewDuck(cfg DuckConfig, pose Pose, scene Scene, targets TargetSource, opts ...DuckOption) (*Duck, error) {
	if scene == nil {
		return nil, ErrNoScene
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if targets == nil {
		targets = FixedTarget{}
	}

	d := &Duck{
		Name:    "duck",
		cfg:     cfg,
		pose:    NewPose(pose.Position, pose.Forward),
		scene:   scene,
		targets: targets,
		locator: NewLocator(scene, TagPlayer),
		rng:     rand.New(rand.NewPCG(1, 2)),
		logger:  zap.NewNop(),
		state:   Wandering,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("duck", d.Name))

	d.wanderTimer = cfg.WanderTime
	d.wanderDir = common.RandomGroundDirection(d.rng)
	return d, nil
}

// Tick runs one perception, decision and action step.
func (d *Duck) Tick(dt float64) {
	if d == nil {
		return
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	d.sighting = d.look()
	prev := d.state
	d.state = stateFor(d.sighting)
	if prev != d.state {
		d.logger.Debug("state changed", zap.Stringer("from", prev), zap.Stringer("to", d.state))
	}
	d.runState(dt)
	d.drawGizmos()
}

// look probes toward the current target. No target means nothing to see.
func (d *Duck) look() Sighting {
	origin := d.SensorOrigin()
	target, ok := d.targets.CurrentTarget()
	if !ok || target == nil {
		return Sighting{Origin: origin, MaxDistance: d.cfg.SightDistance}
	}
	return d.locator.HasLineOfSight(origin, target.Center(), d.cfg.SightDistance)
}

func stateFor(s Sighting) DuckState {
	if s.Visible {
		return Pursuing
	}
	return Wandering
}

func (d *Duck) runState(dt float64) {
	st, ok := duckStates[d.state]
	if !ok {
		d.logger.Error("unhandled duck state", zap.Stringer("state", d.state))
		return
	}
	st.Run(d, dt)
}

func (d *Duck) drawGizmos() {
	if d.gizmos == nil {
		return
	}
	s := d.sighting
	clr := sightBlockedColor
	if s.Visible {
		clr = sightClearColor
	}
	d.gizmos.DrawRay(s.Origin, s.Direction.Mul(s.MaxDistance), clr)
	if target, ok := d.targets.CurrentTarget(); ok && target != nil {
		d.gizmos.DrawSphere(target.Center(), gizmoRadius, clr)
	}
	if s.Hit {
		d.gizmos.DrawSphere(s.HitPoint, gizmoRadius, clr)
	}
}

// SensorOrigin is the sensor offset carried into world space by the pose.
func (d *Duck) SensorOrigin() mgl64.Vec3 {
	return d.pose.TransformPoint(d.cfg.SensorOffset)
}

func (d *Duck) Pose() Pose                  { return d.pose }
func (d *Duck) State() DuckState            { return d.state }
func (d *Duck) Sighting() Sighting          { return d.sighting }
func (d *Duck) WanderDirection() mgl64.Vec3 { return d.wanderDir }
func (d *Duck) Config() DuckConfig          { return d.cfg }

// Redirects is how many obstacle redirects the last wander tick used.
func (d *Duck) Redirects() int { return d.redirects }

// Marker is the diagnostic color of the current state.
func (d *Duck) Marker() color.Color {
	if d.state == Pursuing {
		return PursuingColor
	}
	return WanderingColor
}

// SetPose teleports the duck.
func (d *Duck) SetPose(p Pose) {
	d.pose = NewPose(p.Position, p.Forward)
}

// SetConfig swaps tuning values on a live duck. The wander timer is clamped
// so a shorter WanderTime takes effect on the next tick.
func (d *Duck) SetConfig(cfg DuckConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = cfg
	if d.wanderTimer > cfg.WanderTime {
		d.wanderTimer = cfg.WanderTime
	}
	return nil
}
