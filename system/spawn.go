package system

import (
	"fmt"

	"github.com/milk9111/duckpond/obj"
	"github.com/milk9111/duckpond/prefabs"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

func (w *World) spawnObstacles(specs []prefabs.ObstacleSpec) {
	for _, o := range specs {
		switch o.Shape {
		case prefabs.ShapeBox:
			w.CollisionWorld.AddBox(o.Name, o.X, o.Z, o.Width, o.Depth, o.MinY, o.MaxY)
		case prefabs.ShapeCircle:
			w.CollisionWorld.AddCircle(o.Name, o.X, o.Z, o.Radius, o.MinY, o.MaxY)
		default:
			// rejected by SceneSpec.Validate
			continue
		}
		w.ObstacleColors[o.Name] = o.Color.ColorOr(colornames.Slategray)
	}
}

func (w *World) spawnPlayer(spawn prefabs.SpawnSpec, input obj.InputSource, logger *zap.Logger) error {
	spec, err := prefabs.LoadPlayerSpec(w.src, w.sim.Player)
	if err != nil {
		return err
	}
	player, err := obj.NewPlayer(spec.Config(), spawn.Transform.Pose(), input, logger)
	if err != nil {
		return fmt.Errorf("system: spawn player: %w", err)
	}
	player.SetGround(w.CollisionWorld.Ignoring(obj.TagPlayer))
	w.Player = player
	w.PlayerColor = spec.Color.ColorOr(obj.PlayerColor)
	return nil
}

func (w *World) spawnDucks(spawns []prefabs.SpawnSpec, logger *zap.Logger) error {
	spec, err := prefabs.LoadDuckSpec(w.src, w.sim.Duck)
	if err != nil {
		return err
	}
	cfg := spec.Config()

	w.Ducks = make([]*obj.Duck, 0, len(spawns))
	w.lastStates = make([]obj.DuckState, 0, len(spawns))
	for i, s := range spawns {
		d, err := obj.NewDuck(cfg, s.Transform.Pose(), w.CollisionWorld, w,
			obj.WithName(s.Name),
			obj.WithRand(w.duckRand(i)),
			obj.WithLogger(logger),
			obj.WithGizmos(w.gizmos),
		)
		if err != nil {
			return fmt.Errorf("system: spawn duck %s: %w", s.Name, err)
		}
		w.Ducks = append(w.Ducks, d)
		w.lastStates = append(w.lastStates, d.State())
	}
	return nil
}
