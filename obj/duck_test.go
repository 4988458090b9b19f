package obj

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeScene reports every ray as seeing tag and every sweep as blocked when
// blocked is set.
type fakeScene struct {
	tag     string
	blocked bool
	sweeps  int
}

func (s *fakeScene) CastRay(origin, dir mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	if s.tag == "" {
		return RayHit{}, false
	}
	return RayHit{Point: origin.Add(dir.Mul(maxDistance / 2)), Distance: maxDistance / 2, Tag: s.tag}, true
}

func (s *fakeScene) SweepSphere(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDistance float64) (SweepHit, bool) {
	s.sweeps++
	if !s.blocked {
		return SweepHit{}, false
	}
	return SweepHit{Point: origin, Tag: TagObstacle}, true
}

type pointTarget struct {
	pos mgl64.Vec3
}

func (p pointTarget) Position() mgl64.Vec3 { return p.pos }
func (p pointTarget) Center() mgl64.Vec3   { return p.pos.Add(mgl64.Vec3{0, 1, 0}) }

func testDuck(t *testing.T, scene Scene, targets TargetSource, pose Pose, opts ...DuckOption) *Duck {
	t.Helper()
	opts = append([]DuckOption{WithRand(rand.New(rand.NewPCG(42, 1)))}, opts...)
	d, err := NewDuck(DefaultDuckConfig(), pose, scene, targets, opts...)
	require.NoError(t, err)
	return d
}

func atOrigin() Pose {
	return NewPose(mgl64.Vec3{}, common.Forward)
}

func TestNewDuck(t *testing.T) {
	_, err := NewDuck(DefaultDuckConfig(), atOrigin(), nil, nil)
	assert.ErrorIs(t, err, ErrNoScene)

	bad := DefaultDuckConfig()
	bad.SightDistance = 0
	_, err = NewDuck(bad, atOrigin(), &fakeScene{}, nil)
	assert.True(t, errors.Is(err, ErrInvalidDuckConfig))

	d, err := NewDuck(DefaultDuckConfig(), NewPose(mgl64.Vec3{}, mgl64.Vec3{3, 2, 4}), &fakeScene{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Wandering, d.State())
	assert.InDelta(t, 1, d.Pose().Forward.Len(), 1e-12)
	assert.Zero(t, d.Pose().Forward.Y())
	assert.InDelta(t, 1, d.WanderDirection().Len(), 1e-12)
}

func TestDuckConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *DuckConfig)
		ok     bool
	}{
		{"defaults", func(c *DuckConfig) {}, true},
		{"zero_walk_speed", func(c *DuckConfig) { c.WalkSpeed = 0 }, true},
		{"negative_rotate_speed", func(c *DuckConfig) { c.RotateSpeed = -1 }, false},
		{"zero_wander_time", func(c *DuckConfig) { c.WanderTime = 0 }, false},
		{"nan_probe", func(c *DuckConfig) { c.ProbeRadius = math.NaN() }, false},
		{"infinite_sight", func(c *DuckConfig) { c.SightDistance = math.Inf(1) }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultDuckConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDuckConfig)
			}
		})
	}
}

func TestDuckStateFollowsSighting(t *testing.T) {
	cases := []struct {
		name    string
		scene   *fakeScene
		targets TargetSource
		want    DuckState
	}{
		{"visible", &fakeScene{tag: TagPlayer}, FixedTarget{pointTarget{mgl64.Vec3{0, 0, 5}}}, Pursuing},
		{"blocked", &fakeScene{tag: TagObstacle}, FixedTarget{pointTarget{mgl64.Vec3{0, 0, 5}}}, Wandering},
		{"nothing_hit", &fakeScene{}, FixedTarget{pointTarget{mgl64.Vec3{0, 0, 5}}}, Wandering},
		{"no_target", &fakeScene{tag: TagPlayer}, FixedTarget{}, Wandering},
		{"nil_source", &fakeScene{tag: TagPlayer}, nil, Wandering},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := testDuck(t, c.scene, c.targets, atOrigin())
			d.Tick(0.1)
			assert.Equal(t, c.want, d.State())
			assert.Equal(t, c.want == Pursuing, d.Sighting().Visible)
		})
	}
}

func TestDuckStateIsDerivedEveryTick(t *testing.T) {
	cw := NewCollisionWorld()
	cw.SetTarget(mgl64.Vec3{0, 0, 6}, 0.5, 2)
	present := true
	source := TargetFunc(func() (Target, bool) {
		if !present {
			return nil, false
		}
		return pointTarget{mgl64.Vec3{0, 0, 6}}, true
	})

	d := testDuck(t, cw, source, atOrigin())
	for i, p := range []bool{true, false, true, true, false, false, true} {
		present = p
		d.Tick(0.05)
		require.Equal(t, d.Sighting().Visible, d.State() == Pursuing, "tick %d", i)
		require.Equal(t, p, d.State() == Pursuing, "tick %d", i)
	}
}

func TestWanderDirectionStaysOnGround(t *testing.T) {
	d := testDuck(t, NewCollisionWorld(), nil, atOrigin())
	for i := 0; i < 200; i++ {
		d.Tick(0.25)
		dir := d.WanderDirection()
		require.InDelta(t, 1, dir.Len(), 1e-9)
		require.Zero(t, dir.Y())

		fwd := d.Pose().Forward
		require.InDelta(t, 1, fwd.Len(), 1e-9)
		require.Zero(t, fwd.Y())
	}
}

func TestWanderChangesOncePerWanderTime(t *testing.T) {
	cw := NewCollisionWorld()
	cw.SetTarget(mgl64.Vec3{0, 0, 100}, 0.5, 2)
	target := FixedTarget{pointTarget{mgl64.Vec3{0, 0, 100}}}

	cfg := DefaultDuckConfig()
	cfg.WanderTime = 1
	d, err := NewDuck(cfg, atOrigin(), cw, target, WithRand(rand.New(rand.NewPCG(9, 9))))
	require.NoError(t, err)

	changes := 0
	prev := d.WanderDirection()
	for tick := 1; tick <= 12; tick++ {
		d.Tick(0.25)
		require.Equal(t, Wandering, d.State())
		require.Zero(t, d.Redirects())

		changed := !d.WanderDirection().ApproxEqualThreshold(prev, 1e-12)
		assert.Equal(t, tick%4 == 0, changed, "tick %d", tick)
		if changed {
			changes++
		}
		prev = d.WanderDirection()
	}
	assert.Equal(t, 3, changes)
}

func TestWanderPeriodAtFrameRate(t *testing.T) {
	cases := []struct {
		name       string
		tickRate   int
		wanderTime float64
	}{
		{"sixty_hz_three_seconds", 60, 3},
		{"thirty_hz_one_second", 30, 1},
		{"hundred_hz_half_second", 100, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultDuckConfig()
			cfg.WanderTime = c.wanderTime
			d, err := NewDuck(cfg, atOrigin(), NewCollisionWorld(), nil, WithRand(rand.New(rand.NewPCG(3, 4))))
			require.NoError(t, err)

			period := int(math.Round(c.wanderTime * float64(c.tickRate)))
			dt := 1 / float64(c.tickRate)

			var changedAt []int
			prev := d.WanderDirection()
			for tick := 1; tick <= 3*period+period/2; tick++ {
				d.Tick(dt)
				if !d.WanderDirection().ApproxEqualThreshold(prev, 1e-12) {
					changedAt = append(changedAt, tick)
				}
				prev = d.WanderDirection()
			}
			assert.Equal(t, []int{period, 2 * period, 3 * period}, changedAt)
		})
	}
}

func TestWanderMovesAlongWanderDirection(t *testing.T) {
	d := testDuck(t, NewCollisionWorld(), nil, atOrigin())
	dir := d.WanderDirection()
	start := d.Pose().Position

	d.Tick(0.1)
	want := start.Add(dir.Mul(d.Config().WalkSpeed * 0.1))
	assert.True(t, d.Pose().Position.ApproxEqualThreshold(want, 1e-12))
	assert.LessOrEqual(t, common.PlanarAngle(common.Forward, d.Pose().Forward), mgl64.DegToRad(d.Config().RotateSpeed)*0.1+1e-9)
}

func TestEnclosedDuckRedirectsThreeTimes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scene := &fakeScene{blocked: true}
	d := testDuck(t, scene, nil, atOrigin(), WithLogger(zap.New(core)))

	for i := 1; i <= 5; i++ {
		start := d.Pose().Position
		d.Tick(0.1)
		assert.Equal(t, maxRedirects, d.Redirects())
		assert.Equal(t, maxRedirects*i, scene.sweeps)

		// still walks along the last direction drawn
		want := start.Add(d.WanderDirection().Mul(d.Config().WalkSpeed * 0.1))
		assert.True(t, d.Pose().Position.ApproxEqualThreshold(want, 1e-12))
	}
	assert.Equal(t, 5, logs.FilterMessage("obstacle redirects exhausted").Len())
}

func TestPartialRedirect(t *testing.T) {
	cw := NewCollisionWorld()
	d := testDuck(t, cw, nil, atOrigin())
	dir := d.WanderDirection()

	// wall right in front of the current wander direction
	ahead := d.SensorOrigin().Add(dir.Mul(1))
	cw.AddCircle("post", ahead.X(), ahead.Z(), 0.3, 0, 2)

	d.Tick(0.1)
	assert.GreaterOrEqual(t, d.Redirects(), 1)
	assert.LessOrEqual(t, d.Redirects(), maxRedirects)
	assert.False(t, d.WanderDirection().ApproxEqualThreshold(dir, 1e-12))
}

func TestPursueWithinStopDistanceHoldsPosition(t *testing.T) {
	target := FixedTarget{pointTarget{mgl64.Vec3{0.5, 0, 0}}}
	d := testDuck(t, &fakeScene{tag: TagPlayer}, target, atOrigin())

	start := d.Pose().Position
	prevYaw := d.Pose().Yaw()
	for i := 0; i < 5; i++ {
		d.Tick(0.1)
		require.Equal(t, Pursuing, d.State())
		assert.Equal(t, start, d.Pose().Position)
		assert.Greater(t, d.Pose().Yaw(), prevYaw)
		prevYaw = d.Pose().Yaw()
	}
	assert.InDelta(t, math.Pi/2, prevYaw, 1e-9)
}

func TestPursueStopsAtStopDistance(t *testing.T) {
	target := FixedTarget{pointTarget{mgl64.Vec3{0, 0, 1.1}}}
	d := testDuck(t, &fakeScene{tag: TagPlayer}, target, atOrigin())

	d.Tick(1)
	assert.InDelta(t, 0.1, d.Pose().Position.Z(), 1e-12)
	d.Tick(1)
	assert.InDelta(t, 0.1, d.Pose().Position.Z(), 1e-12)
}

func TestTargetAheadScenario(t *testing.T) {
	cw := NewCollisionWorld()
	player, err := NewPlayer(DefaultPlayerConfig(), NewPose(mgl64.Vec3{0, 0, 5}, common.Forward), nil, nil)
	require.NoError(t, err)
	cw.SetTarget(player.Position(), player.Config().Radius, player.Config().Height)

	gizmos := &GizmoRecorder{}
	d := testDuck(t, cw, FixedTarget{player}, NewPose(mgl64.Vec3{}, common.FromYaw(0.5)), WithGizmos(gizmos))
	d.Tick(0.1)

	require.Equal(t, Pursuing, d.State())
	assert.Equal(t, PursuingColor, d.Marker())

	step := d.Config().WalkSpeed * 0.1
	assert.True(t, d.Pose().Position.ApproxEqualThreshold(mgl64.Vec3{0, 0, step}, 1e-12))

	turn := mgl64.DegToRad(d.Config().RotateSpeed) * 0.1
	assert.InDelta(t, 0.5-turn, d.Pose().Yaw(), 1e-9)

	require.Len(t, gizmos.Rays, 1)
	assert.Equal(t, sightClearColor, gizmos.Rays[0].Color)
	assert.InDelta(t, d.Config().SightDistance, gizmos.Rays[0].Dir.Len(), 1e-9)
	assert.Len(t, gizmos.Spheres, 2)
}

func TestBlockedGizmoIsRed(t *testing.T) {
	gizmos := &GizmoRecorder{}
	d := testDuck(t, &fakeScene{tag: TagObstacle}, FixedTarget{pointTarget{mgl64.Vec3{0, 0, 5}}}, atOrigin(), WithGizmos(gizmos))
	d.Tick(0.1)

	require.Len(t, gizmos.Rays, 1)
	assert.Equal(t, sightBlockedColor, gizmos.Rays[0].Color)
	assert.Equal(t, WanderingColor, d.Marker())
}

func TestUnknownStateIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := testDuck(t, &fakeScene{}, nil, atOrigin(), WithLogger(zap.New(core)))
	before := d.Pose()

	d.state = DuckState(42)
	d.runState(0.5)

	assert.Equal(t, before, d.Pose())
	entries := logs.FilterMessage("unhandled duck state").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "DuckState(42)", entries[0].ContextMap()["state"])
}

func TestNegativeDeltaIsClamped(t *testing.T) {
	d := testDuck(t, NewCollisionWorld(), nil, atOrigin())
	before := d.Pose()
	dir := d.WanderDirection()

	d.Tick(-1)
	d.Tick(math.NaN())
	assert.Equal(t, before, d.Pose())
	assert.Equal(t, dir, d.WanderDirection())
}

func TestSetConfig(t *testing.T) {
	d := testDuck(t, NewCollisionWorld(), nil, atOrigin())

	cfg := d.Config()
	cfg.WanderTime = 0.5
	require.NoError(t, d.SetConfig(cfg))
	assert.Equal(t, 0.5, d.wanderTimer)

	cfg.WalkSpeed = -1
	assert.ErrorIs(t, d.SetConfig(cfg), ErrInvalidDuckConfig)
	assert.Equal(t, 0.5, d.Config().WanderTime)
}

func TestDuckIsDeterministicPerSeed(t *testing.T) {
	run := func() Pose {
		cw := NewCollisionWorld()
		cw.AddBox("rock", 2, 2, 1, 1, 0, 1)
		d, err := NewDuck(DefaultDuckConfig(), atOrigin(), cw, nil, WithRand(rand.New(rand.NewPCG(5, 5))))
		require.NoError(t, err)
		for i := 0; i < 100; i++ {
			d.Tick(1.0 / 60)
		}
		return d.Pose()
	}
	assert.Equal(t, run(), run())
}
