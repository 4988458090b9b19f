package obj

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
	"go.uber.org/zap"
)

// duckState is implemented by each concrete duck behavior.
type duckState interface {
	Name() string
	Run(d *Duck, dt float64)
}

// singletons, looked up by state value
var (
	stateDuckWandering duckState = &duckWanderingState{}
	stateDuckPursuing  duckState = &duckPursuingState{}

	duckStates = map[DuckState]duckState{
		Wandering: stateDuckWandering,
		Pursuing:  stateDuckPursuing,
	}
)

type duckWanderingState struct{}

func (duckWanderingState) Name() string { return Wandering.String() }
func (duckWanderingState) Run(d *Duck, dt float64) {
	d.wanderTimer -= dt
	// tolerance absorbs rounding from steps like 1/60 that are inexact in binary
	if d.wanderTimer <= common.Epsilon {
		d.wanderTimer = d.cfg.WanderTime
		d.wanderDir = common.RandomGroundDirection(d.rng)
	}

	d.avoidObstacles()

	d.pose = Steer(d.pose, d.wanderDir, mgl64.DegToRad(d.cfg.RotateSpeed)*dt)
	d.pose = Advance(d.pose, d.wanderDir, d.cfg.WalkSpeed*dt)
}

// avoidObstacles re-rolls the wander direction while the probe ahead is
// blocked, up to maxRedirects times. The last draw is kept either way.
func (d *Duck) avoidObstacles() {
	d.redirects = 0
	origin := d.SensorOrigin()
	for d.redirects < maxRedirects {
		if _, hit := d.scene.SweepSphere(origin, d.cfg.ProbeRadius, d.wanderDir, d.cfg.ProbeDistance); !hit {
			return
		}
		d.wanderDir = common.RandomGroundDirection(d.rng)
		d.redirects++
	}
	d.logger.Debug("obstacle redirects exhausted", zap.Int("redirects", d.redirects))
}

type duckPursuingState struct{}

func (duckPursuingState) Name() string { return Pursuing.String() }
func (duckPursuingState) Run(d *Duck, dt float64) {
	d.redirects = 0
	target, ok := d.targets.CurrentTarget()
	if !ok || target == nil {
		return
	}

	here := common.Flatten(d.pose.Position)
	there := common.Flatten(target.Position())
	toTarget := there.Sub(here)
	dist := toTarget.Len()

	d.pose = Steer(d.pose, toTarget, mgl64.DegToRad(d.cfg.RotateSpeed)*dt)
	if dist <= d.cfg.StopDistance {
		return
	}
	step := d.cfg.WalkSpeed * dt
	if rest := dist - d.cfg.StopDistance; step > rest {
		step = rest
	}
	d.pose = Advance(d.pose, toTarget, step)
}
