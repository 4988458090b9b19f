package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/obj"
)

// Transition records a duck switching behavior. It is observational only.
type Transition struct {
	Tick int
	Duck string
	From obj.DuckState
	To   obj.DuckState
	At   mgl64.Vec3
}

// TransitionEmitter keeps a log of transitions and fans each one out to
// Handlers in registration order.
type TransitionEmitter struct {
	Handlers []func(Transition)
	log      []Transition
}

func (e *TransitionEmitter) Emit(t Transition) {
	e.log = append(e.log, t)
	for _, h := range e.Handlers {
		if h != nil {
			h(t)
		}
	}
}

func (e *TransitionEmitter) Log() []Transition {
	out := make([]Transition, len(e.log))
	copy(out, e.log)
	return out
}
