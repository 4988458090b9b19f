package system

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/config"
	"github.com/milk9111/duckpond/obj"
	"github.com/milk9111/duckpond/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const arenaScene = `
name: arena
obstacles:
  - { name: wall, shape: box, x: 0, z: 2.5, width: 4, depth: 0.5, min_y: 0, max_y: 3 }
ducks:
  - { name: a, transform: { x: 0, z: -5, yaw: 0 } }
  - { name: b, transform: { x: 0, z: 5, yaw: 180 } }
player:
  name: player
  transform: { x: 0, z: 0, yaw: 0 }
`

var idle = obj.InputFunc(func(_, _ float64, _ obj.Pose) (obj.PlayerInput, error) {
	return obj.PlayerInput{}, nil
})

func testSim() config.SimConfig {
	return config.NewDefaultConfig().Sim
}

func writePrefab(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func arenaWorld(t *testing.T, logger *zap.Logger) (*World, string) {
	t.Helper()
	dir := t.TempDir()
	writePrefab(t, dir, "arena.yaml", arenaScene)

	sim := testSim()
	sim.Scene = "arena.yaml"
	w, err := NewWorld(Options{Source: prefabs.Source{Dir: dir}, Sim: sim, Logger: logger, Input: idle})
	require.NoError(t, err)
	return w, dir
}

func TestNewWorldDefaultScene(t *testing.T) {
	w, err := NewWorld(Options{Source: prefabs.Source{}, Sim: testSim()})
	require.NoError(t, err)

	require.Len(t, w.Ducks, 3)
	assert.Equal(t, "huey", w.Ducks[0].Name)
	assert.Equal(t, "dewey", w.Ducks[1].Name)
	assert.Equal(t, "louie", w.Ducks[2].Name)
	assert.Len(t, w.CollisionWorld.Colliders(), 8)
	assert.Equal(t, prefabs.BoundsSpec{MinX: -12, MinZ: -12, MaxX: 12, MaxZ: 12}, w.Scene.Bounds)
	assert.Equal(t, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, w.ObstacleColors["rock"])
	assert.Equal(t, 3.0, w.Player.Config().ForwardSpeed)

	target, ok := w.CurrentTarget()
	require.True(t, ok)
	assert.Same(t, w.Player, target)
}

func TestNewWorldErrors(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(*config.SimConfig)
	}{
		{"missing_scene", func(s *config.SimConfig) { s.Scene = "nope.yaml" }},
		{"missing_duck", func(s *config.SimConfig) { s.Duck = "nope.yaml" }},
		{"missing_player", func(s *config.SimConfig) { s.Player = "nope.yaml" }},
		{"missing_script", func(s *config.SimConfig) { s.Script = "nope.tengo" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sim := testSim()
			c.tweak(&sim)
			_, err := NewWorld(Options{Sim: sim})
			assert.Error(t, err)
		})
	}
}

func TestStepRecordsTransitions(t *testing.T) {
	w, _ := arenaWorld(t, nil)

	var seen []Transition
	w.OnTransition(func(tr Transition) { seen = append(seen, tr) })

	w.Step(0.1)
	assert.Equal(t, 1, w.Tick())

	require.Len(t, seen, 1)
	assert.Equal(t, Transition{Tick: 0, Duck: "a", From: obj.Wandering, To: obj.Pursuing, At: seen[0].At}, seen[0])
	assert.Equal(t, seen, w.Transitions())

	assert.Equal(t, obj.Pursuing, w.Ducks[0].State())
	assert.Equal(t, obj.Wandering, w.Ducks[1].State())
	assert.Equal(t, obj.TagObstacle, w.Ducks[1].Sighting().HitTag)

	summary := w.Summary()
	require.Len(t, summary, 2)
	assert.Equal(t, 1, summary[0].Transitions)
	assert.Equal(t, 0, summary[1].Transitions)

	// player ground ray and one sight ray per duck
	assert.Len(t, w.Gizmos().Rays, 3)
}

func TestRun(t *testing.T) {
	w, err := NewWorld(Options{Sim: testSim()})
	require.NoError(t, err)

	require.NoError(t, w.Run(context.Background(), NewFixedClock(60), 120))
	assert.Equal(t, 120, w.Tick())
	assert.Greater(t, w.Player.Position().Z(), 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, NewFixedClock(60), 10), context.Canceled)
	assert.Equal(t, 120, w.Tick())
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() []DuckSummary {
		w, err := NewWorld(Options{Sim: testSim()})
		require.NoError(t, err)
		require.NoError(t, w.Run(context.Background(), NewFixedClock(30), 300))
		return w.Summary()
	}
	assert.Equal(t, run(), run())
}

func TestFixedClock(t *testing.T) {
	assert.InDelta(t, 0.02, NewFixedClock(50).DeltaTime(), 1e-12)
	assert.Zero(t, NewFixedClock(0).DeltaTime())
	assert.Zero(t, FixedClock{Step: -1}.DeltaTime())
}

func TestRespawn(t *testing.T) {
	w, _ := arenaWorld(t, nil)
	for i := 0; i < 30; i++ {
		w.Step(0.1)
	}
	require.NotEqual(t, mgl64.Vec3{0, 0, -5}, w.Ducks[0].Pose().Position)
	seen := len(w.Transitions())

	w.Respawn()
	assert.Equal(t, mgl64.Vec3{0, 0, -5}, w.Ducks[0].Pose().Position)
	assert.Equal(t, mgl64.Vec3{0, 0, 5}, w.Ducks[1].Pose().Position)
	assert.InDelta(t, 0, w.Ducks[0].Pose().Yaw(), 1e-9)
	assert.Equal(t, mgl64.Vec3{}, w.Player.Position())
	assert.Equal(t, 30, w.Tick())
	assert.Len(t, w.Transitions(), seen)
}
