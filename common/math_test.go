package common

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateTowards(t *testing.T) {
	cases := []struct {
		name     string
		current  mgl64.Vec3
		desired  mgl64.Vec3
		maxDelta float64
		want     mgl64.Vec3
	}{
		{"already_aligned", Forward, Forward, 0.1, Forward},
		{"within_step_snaps", Forward, FromYaw(0.05), 0.1, FromYaw(0.05)},
		{"clamped_positive", Forward, mgl64.Vec3{1, 0, 0}, 0.25, FromYaw(0.25)},
		{"clamped_negative", Forward, mgl64.Vec3{-1, 0, 0}, 0.25, FromYaw(-0.25)},
		{"ignores_height", Forward, mgl64.Vec3{0, 5, 3}, 0.25, Forward},
		{"anti_parallel_turns_positive", Forward, mgl64.Vec3{0, 0, -1}, 0.5, FromYaw(0.5)},
		{"zero_desired_holds", FromYaw(1), mgl64.Vec3{}, 0.5, FromYaw(1)},
		{"zero_current_snaps", mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 0.1, mgl64.Vec3{1, 0, 0}},
		{"negative_delta_is_zero", Forward, mgl64.Vec3{1, 0, 0}, -1, Forward},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := RotateTowards(c.current, c.desired, c.maxDelta)
			assert.True(t, got.ApproxEqualThreshold(c.want, 1e-9), "got %v want %v", got, c.want)
			assert.InDelta(t, 1.0, got.Len(), 1e-9)
			assert.Zero(t, got.Y())
		})
	}
}

func TestRotateTowardsConverges(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 50; i++ {
		current := RandomGroundDirection(rng)
		desired := RandomGroundDirection(rng)
		step := 0.05 + rng.Float64()*0.3

		prevAngle := PlanarAngle(current, desired)
		for n := 0; n < 200; n++ {
			next := RotateTowards(current, desired, step)
			require.LessOrEqual(t, PlanarAngle(current, next), step+1e-9)

			angle := PlanarAngle(next, desired)
			require.LessOrEqual(t, angle, prevAngle+1e-9)
			prevAngle = angle
			current = next
		}
		assert.InDelta(t, 0, prevAngle, 1e-9)

		held := RotateTowards(current, desired, step)
		assert.True(t, held.ApproxEqualThreshold(current, 1e-9))
	}
}

func TestAntiParallelIsStable(t *testing.T) {
	current := FromYaw(0.3)
	desired := current.Mul(-1)
	first := RotateTowards(current, desired, 0.1)
	for i := 0; i < 10; i++ {
		assert.True(t, RotateTowards(current, desired, 0.1).ApproxEqualThreshold(first, 1e-12))
	}
	assert.InDelta(t, 0.4, Yaw(first), 1e-9)
}

func TestRandomGroundDirection(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		dir := RandomGroundDirection(rng)
		require.InDelta(t, 1.0, dir.Len(), 1e-9)
		require.Zero(t, dir.Y())
	}
}

func TestRandomInsideUnitCircle(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 1000; i++ {
		p := RandomInsideUnitCircle(rng)
		require.LessOrEqual(t, p.Len(), 1.0)
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{-math.Pi, -math.Pi},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, NormalizeAngle(c.in), 1e-9)
	}
}

func TestPlanarDistance(t *testing.T) {
	assert.InDelta(t, 5.0, PlanarDistance(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{3, -4, 4}), 1e-12)
}
