package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/duckpond/obj"
)

// stickDeadZone ignores small stick drift.
const stickDeadZone = 0.3

// Keyboard drives the player from W/S (or arrows) to walk and A/D to turn,
// with the first gamepad's left stick as an alternative.
type Keyboard struct {
	pressed func(ebiten.Key) bool
	stick   func() (x, y float64, ok bool)
}

func NewKeyboard() *Keyboard {
	return &Keyboard{pressed: ebiten.IsKeyPressed, stick: firstStick}
}

func (k *Keyboard) Input(_, _ float64, _ obj.Pose) (obj.PlayerInput, error) {
	var in obj.PlayerInput
	if k.pressed(ebiten.KeyW) || k.pressed(ebiten.KeyUp) {
		in.Forward += 1
	}
	if k.pressed(ebiten.KeyS) || k.pressed(ebiten.KeyDown) {
		in.Forward -= 1
	}
	// positive turn is clockwise seen from above
	if k.pressed(ebiten.KeyD) || k.pressed(ebiten.KeyRight) {
		in.Turn += 1
	}
	if k.pressed(ebiten.KeyA) || k.pressed(ebiten.KeyLeft) {
		in.Turn -= 1
	}

	if k.stick != nil {
		if x, y, ok := k.stick(); ok {
			if x < -stickDeadZone || x > stickDeadZone {
				in.Turn = x
			}
			// stick up reads negative
			if y < -stickDeadZone || y > stickDeadZone {
				in.Forward = -y
			}
		}
	}
	return in, nil
}

func firstStick() (float64, float64, bool) {
	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return 0, 0, false
	}
	gid := ids[0]
	x := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
	y := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
	return x, y, true
}
