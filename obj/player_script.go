package obj

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptMover drives the player from a tengo script. Each tick the script
// sees time, dt, x, y, z and yaw, and assigns forward and turn.
type ScriptMover struct {
	compiled *tengo.Compiled
}

var scriptInputs = []string{"time", "dt", "x", "y", "z", "yaw"}

func NewScriptMover(src []byte) (*ScriptMover, error) {
	script := tengo.NewScript(src)
	for _, name := range scriptInputs {
		_ = script.Add(name, 0.0)
	}
	_ = script.Add("forward", 0.0)
	_ = script.Add("turn", 0.0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("player script: compile: %w", err)
	}
	return &ScriptMover{compiled: compiled}, nil
}

func (m *ScriptMover) Input(elapsed, dt float64, pose Pose) (PlayerInput, error) {
	if m == nil || m.compiled == nil {
		return PlayerInput{}, fmt.Errorf("player script: not compiled")
	}
	values := map[string]float64{
		"time":    elapsed,
		"dt":      dt,
		"x":       pose.Position.X(),
		"y":       pose.Position.Y(),
		"z":       pose.Position.Z(),
		"yaw":     pose.Yaw(),
		"forward": 0,
		"turn":    0,
	}
	for name, v := range values {
		if err := m.compiled.Set(name, v); err != nil {
			return PlayerInput{}, fmt.Errorf("player script: set %s: %w", name, err)
		}
	}
	if err := m.compiled.Run(); err != nil {
		return PlayerInput{}, fmt.Errorf("player script: run: %w", err)
	}
	return PlayerInput{
		Forward: m.compiled.Get("forward").Float(),
		Turn:    m.compiled.Get("turn").Float(),
	}, nil
}
