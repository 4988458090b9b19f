package obj

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

const (
	// groundCastHeight lifts the ground ray above the feet so a player
	// standing exactly on the ground still registers a hit.
	groundCastHeight = 1.0
)

var PlayerColor color.Color = colornames.Crimson

var ErrInvalidPlayerConfig = errors.New("obj: invalid player config")

// PlayerConfig tunes player locomotion. TurnSpeed is degrees per second at
// full input.
type PlayerConfig struct {
	CenterOffset      mgl64.Vec3
	ForwardSpeed      float64
	TurnSpeed         float64
	MaxGroundDistance float64
	Radius            float64
	Height            float64
}

func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		CenterOffset:      mgl64.Vec3{0, 1, 0},
		ForwardSpeed:      2,
		TurnSpeed:         90,
		MaxGroundDistance: 2,
		Radius:            0.4,
		Height:            2,
	}
}

func (c PlayerConfig) Validate() error {
	switch {
	case c.ForwardSpeed < 0:
		return fmt.Errorf("%w: forward_speed = %v", ErrInvalidPlayerConfig, c.ForwardSpeed)
	case c.TurnSpeed < 0:
		return fmt.Errorf("%w: turn_speed = %v", ErrInvalidPlayerConfig, c.TurnSpeed)
	case c.MaxGroundDistance < 0:
		return fmt.Errorf("%w: max_ground_distance = %v", ErrInvalidPlayerConfig, c.MaxGroundDistance)
	case c.Radius <= 0:
		return fmt.Errorf("%w: radius = %v", ErrInvalidPlayerConfig, c.Radius)
	case c.Height <= 0:
		return fmt.Errorf("%w: height = %v", ErrInvalidPlayerConfig, c.Height)
	}
	return nil
}

// PlayerInput is one tick of locomotion input, each axis in [-1, 1].
type PlayerInput struct {
	Forward float64
	Turn    float64
}

func (in PlayerInput) clamped() PlayerInput {
	return PlayerInput{Forward: clampAxis(in.Forward), Turn: clampAxis(in.Turn)}
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// InputSource produces the player's input for a tick.
type InputSource interface {
	Input(elapsed, dt float64, pose Pose) (PlayerInput, error)
}

// InputFunc adapts a function to InputSource.
type InputFunc func(elapsed, dt float64, pose Pose) (PlayerInput, error)

func (f InputFunc) Input(elapsed, dt float64, pose Pose) (PlayerInput, error) {
	return f(elapsed, dt, pose)
}

// Player is the target the ducks look for.
type Player struct {
	cfg    PlayerConfig
	pose   Pose
	input  InputSource
	logger *zap.Logger

	ground     RayCaster
	elapsed    float64
	grounded   bool
	groundFrom mgl64.Vec3
}

func NewPlayer(cfg PlayerConfig, pose Pose, input InputSource, logger *zap.Logger) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Player{
		cfg:    cfg,
		pose:   NewPose(pose.Position, pose.Forward),
		input:  input,
		logger: logger,
	}
	p.grounded = p.checkGround()
	return p, nil
}

// Update reads input and moves the player. The player turns freely but only
// walks while grounded. An input error is logged and the pose is held.
func (p *Player) Update(dt float64) {
	if p == nil {
		return
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	p.elapsed += dt

	var in PlayerInput
	if p.input != nil {
		var err error
		in, err = p.input.Input(p.elapsed, dt, p.pose)
		if err != nil {
			p.logger.Warn("player input failed", zap.Error(err))
			return
		}
	}
	in = in.clamped()

	p.grounded = p.checkGround()
	if p.grounded {
		p.pose = p.pose.Translate(p.pose.Forward.Mul(in.Forward * p.cfg.ForwardSpeed * dt))
	}
	p.pose = p.pose.Turn(mgl64.DegToRad(in.Turn * p.cfg.TurnSpeed * dt))
}

// checkGround casts straight down from just above the feet. The nearest of
// the ground plane at y = 0 and any collider top below the ray origin counts as
// ground. Collider tops are flat, so there is no slope limit.
func (p *Player) checkGround() bool {
	p.groundFrom = p.pose.Position.Add(mgl64.Vec3{0, groundCastHeight, 0})
	drop := p.groundFrom.Y()
	if p.ground != nil {
		if hit, ok := p.ground.CastRay(p.groundFrom, common.Up.Mul(-1), p.cfg.MaxGroundDistance); ok && hit.Distance < drop {
			drop = hit.Distance
		}
	}
	return drop >= 0 && drop <= p.cfg.MaxGroundDistance
}

func (p *Player) Position() mgl64.Vec3 { return p.pose.Position }

// Center is the configured center offset carried into world space.
func (p *Player) Center() mgl64.Vec3 {
	return p.pose.TransformPoint(p.cfg.CenterOffset)
}

func (p *Player) Pose() Pose           { return p.pose }
func (p *Player) Config() PlayerConfig { return p.cfg }
func (p *Player) Grounded() bool       { return p.grounded }

func (p *Player) SetPose(pose Pose) {
	p.pose = NewPose(pose.Position, pose.Forward)
	p.grounded = p.checkGround()
}

// SetGround sets what the ground ray casts against besides the ground
// plane. It must not report the player's own collider.
func (p *Player) SetGround(ground RayCaster) {
	p.ground = ground
	p.grounded = p.checkGround()
}

func (p *Player) SetInput(input InputSource) {
	p.input = input
}

// SetConfig swaps the tuning values of a live player.
func (p *Player) SetConfig(cfg PlayerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg = cfg
	return nil
}

// DrawGizmos shows the ground ray origin and the ground normal under it.
func (p *Player) DrawGizmos(g Gizmos) {
	if p == nil || g == nil {
		return
	}
	g.DrawSphere(p.groundFrom, gizmoRadius, colornames.Magenta)
	if p.grounded {
		g.DrawRay(common.Flatten(p.pose.Position), common.Up, colornames.Magenta)
	}
}
