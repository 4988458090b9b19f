package system

import (
	"fmt"
	"image/color"
	"path"

	"github.com/milk9111/duckpond/prefabs"
	"go.uber.org/zap"
)

// Reload applies a changed prefab file to the live world. Paths that do not
// name one of the configured prefabs are ignored.
func (w *World) Reload(name string) error {
	switch base := path.Base(name); {
	case base == path.Base(w.sim.Duck):
		spec, err := prefabs.LoadDuckSpec(w.src, w.sim.Duck)
		if err != nil {
			return err
		}
		cfg := spec.Config()
		for _, d := range w.Ducks {
			if err := d.SetConfig(cfg); err != nil {
				return fmt.Errorf("system: reload %s: %w", name, err)
			}
		}
	case base == path.Base(w.sim.Player):
		spec, err := prefabs.LoadPlayerSpec(w.src, w.sim.Player)
		if err != nil {
			return err
		}
		if err := w.Player.SetConfig(spec.Config()); err != nil {
			return fmt.Errorf("system: reload %s: %w", name, err)
		}
		w.PlayerColor = spec.Color.ColorOr(w.PlayerColor)
		w.syncTarget()
	case base == path.Base(w.sim.Scene):
		scene, err := prefabs.LoadSceneSpec(w.src, w.sim.Scene)
		if err != nil {
			return err
		}
		// only obstacles are rebuilt; live ducks and the player stay put
		w.CollisionWorld.ClearObstacles()
		w.ObstacleColors = map[string]color.Color{}
		w.spawnObstacles(scene.Obstacles)
		w.Scene.Obstacles = scene.Obstacles
		w.Scene.Bounds = scene.Bounds
	case prefabs.IsScript(name) && !w.userInput && w.sim.Script != "" && base == path.Base(w.sim.Script):
		mover, err := w.loadScript(w.sim.Script)
		if err != nil {
			return err
		}
		w.Player.SetInput(mover)
	default:
		return nil
	}

	w.logger.Info("prefab reloaded", zap.String("file", name))
	return nil
}

// ApplyChanges reloads every pending file from events without blocking.
// Failures are logged and the previous values stay in effect.
func (w *World) ApplyChanges(events <-chan string) {
	for {
		select {
		case name, ok := <-events:
			if !ok {
				return
			}
			if err := w.Reload(name); err != nil {
				w.logger.Warn("prefab reload failed", zap.String("file", name), zap.Error(err))
			}
		default:
			return
		}
	}
}
