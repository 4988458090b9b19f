package system

import (
	"context"
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/milk9111/duckpond/config"
	"github.com/milk9111/duckpond/obj"
	"github.com/milk9111/duckpond/observability"
	"github.com/milk9111/duckpond/prefabs"
	"go.uber.org/zap"
)

// World owns the scene, the player and every duck, and steps them in a
// fixed order: player, target collider, then ducks in spawn order.
type World struct {
	Scene          *prefabs.SceneSpec
	CollisionWorld *obj.CollisionWorld
	Player         *obj.Player
	Ducks          []*obj.Duck

	// ObstacleColors maps obstacle names to their display color.
	ObstacleColors map[string]color.Color
	PlayerColor    color.Color

	src        prefabs.Source
	sim        config.SimConfig
	logger     *zap.Logger
	gizmos     *obj.GizmoRecorder
	userInput  bool
	tick       int
	lastStates []obj.DuckState
	events     TransitionEmitter
	changes    <-chan string
}

// Options configures NewWorld. A nil Input drives the player from
// Sim.Script, or leaves it idle when no script is set.
type Options struct {
	Source prefabs.Source
	Sim    config.SimConfig
	Logger *zap.Logger
	Input  obj.InputSource
}

// NewWorld loads the scene and spawns everything in it.
func NewWorld(opts Options) (*World, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Nop()
	}
	w := &World{
		CollisionWorld: obj.NewCollisionWorld(),
		ObstacleColors: map[string]color.Color{},
		src:            opts.Source,
		sim:            opts.Sim,
		logger:         logger.Named("world"),
		gizmos:         &obj.GizmoRecorder{},
		userInput:      opts.Input != nil,
	}

	scene, err := prefabs.LoadSceneSpec(w.src, opts.Sim.Scene)
	if err != nil {
		return nil, err
	}
	w.Scene = scene
	w.spawnObstacles(scene.Obstacles)

	input := opts.Input
	if input == nil && opts.Sim.Script != "" {
		mover, err := w.loadScript(opts.Sim.Script)
		if err != nil {
			return nil, err
		}
		input = mover
	}
	if err := w.spawnPlayer(scene.Player, input, logger.Named("player")); err != nil {
		return nil, err
	}
	w.syncTarget()

	if err := w.spawnDucks(scene.Ducks, logger.Named("duck")); err != nil {
		return nil, err
	}

	w.logger.Info("world spawned",
		zap.String("scene", scene.Name),
		zap.Int("obstacles", len(w.CollisionWorld.Colliders())),
		zap.Int("ducks", len(w.Ducks)),
	)
	return w, nil
}

// CurrentTarget hands the player to the ducks.
func (w *World) CurrentTarget() (obj.Target, bool) {
	if w == nil || w.Player == nil {
		return nil, false
	}
	return w.Player, true
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if w == nil {
		return
	}
	if w.changes != nil {
		w.ApplyChanges(w.changes)
	}
	w.gizmos.Reset()

	if w.Player != nil {
		w.Player.Update(dt)
		w.syncTarget()
		w.Player.DrawGizmos(w.gizmos)
	}

	for i, d := range w.Ducks {
		d.Tick(dt)
		if st := d.State(); st != w.lastStates[i] {
			w.events.Emit(Transition{Tick: w.tick, Duck: d.Name, From: w.lastStates[i], To: st, At: d.Pose().Position})
			w.lastStates[i] = st
		}
	}
	w.tick++
}

// Respawn puts the player and every duck back on their scene spawn points.
// Tuning, wander timers and the transition log are kept.
func (w *World) Respawn() {
	w.Player.SetPose(w.Scene.Player.Transform.Pose())
	w.syncTarget()
	for i, d := range w.Ducks {
		if i < len(w.Scene.Ducks) {
			d.SetPose(w.Scene.Ducks[i].Transform.Pose())
		}
	}
	w.logger.Info("world respawned", zap.Int("tick", w.tick))
}

// Run steps the world ticks times, or until ctx is done.
func (w *World) Run(ctx context.Context, clock Clock, ticks int) error {
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.Step(clock.DeltaTime())
	}
	return nil
}

func (w *World) syncTarget() {
	cfg := w.Player.Config()
	w.CollisionWorld.SetTarget(w.Player.Position(), cfg.Radius, cfg.Height)
}

// Watch makes every Step first apply the prefab files named on changes.
func (w *World) Watch(changes <-chan string) {
	w.changes = changes
}

// Tick is the number of completed steps.
func (w *World) Tick() int { return w.tick }

// Gizmos returns the draw commands recorded during the last step.
func (w *World) Gizmos() *obj.GizmoRecorder { return w.gizmos }

// OnTransition registers a handler for duck state changes.
func (w *World) OnTransition(h func(Transition)) {
	w.events.Handlers = append(w.events.Handlers, h)
}

// Transitions returns every state change seen so far, oldest first.
func (w *World) Transitions() []Transition {
	return w.events.Log()
}

// DuckSummary describes one duck at the end of a run.
type DuckSummary struct {
	Name        string
	State       obj.DuckState
	X, Z        float64
	Transitions int
}

func (w *World) Summary() []DuckSummary {
	counts := map[string]int{}
	for _, t := range w.events.Log() {
		counts[t.Duck]++
	}
	out := make([]DuckSummary, 0, len(w.Ducks))
	for _, d := range w.Ducks {
		p := d.Pose().Position
		out = append(out, DuckSummary{Name: d.Name, State: d.State(), X: p.X(), Z: p.Z(), Transitions: counts[d.Name]})
	}
	return out
}

func (w *World) duckRand(i int) *rand.Rand {
	return rand.New(rand.NewPCG(w.sim.Seed, uint64(i)+1))
}

func (w *World) loadScript(name string) (*obj.ScriptMover, error) {
	src, err := w.src.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("system: load script %s: %w", name, err)
	}
	return obj.NewScriptMover(src)
}
