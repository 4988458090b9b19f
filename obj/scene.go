package obj

import (
	"errors"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	TagPlayer   = "player"
	TagObstacle = "obstacle"
)

var ErrNoScene = errors.New("obj: scene is nil")

// RayHit is the first surface a ray touched.
type RayHit struct {
	Point    mgl64.Vec3
	Distance float64
	Tag      string
}

// SweepHit is where a swept sphere first touched something. Point is the
// sphere center at contact.
type SweepHit struct {
	Point    mgl64.Vec3
	Distance float64
	Tag      string
}

type RayCaster interface {
	CastRay(origin, dir mgl64.Vec3, maxDistance float64) (RayHit, bool)
}

type Sweeper interface {
	SweepSphere(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDistance float64) (SweepHit, bool)
}

// Scene answers the spatial queries a duck needs each tick.
type Scene interface {
	RayCaster
	Sweeper
}

// Target is something a duck can look for and walk to.
type Target interface {
	Position() mgl64.Vec3
	Center() mgl64.Vec3
}

// TargetSource hands out the live target, if one exists yet.
type TargetSource interface {
	CurrentTarget() (Target, bool)
}

// TargetFunc adapts a function to TargetSource.
type TargetFunc func() (Target, bool)

func (f TargetFunc) CurrentTarget() (Target, bool) {
	if f == nil {
		return nil, false
	}
	return f()
}

// FixedTarget always reports the same target; a nil T reports none.
type FixedTarget struct {
	T Target
}

func (f FixedTarget) CurrentTarget() (Target, bool) {
	return f.T, f.T != nil
}

// Gizmos receives diagnostic draw commands. Implementations must not feed
// anything back into behavior.
type Gizmos interface {
	DrawRay(origin, dir mgl64.Vec3, clr color.Color)
	DrawSphere(center mgl64.Vec3, radius float64, clr color.Color)
}

type GizmoRay struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
	Color  color.Color
}

type GizmoSphere struct {
	Center mgl64.Vec3
	Radius float64
	Color  color.Color
}

// GizmoRecorder keeps draw commands until Reset.
type GizmoRecorder struct {
	Rays    []GizmoRay
	Spheres []GizmoSphere
}

func (r *GizmoRecorder) DrawRay(origin, dir mgl64.Vec3, clr color.Color) {
	r.Rays = append(r.Rays, GizmoRay{Origin: origin, Dir: dir, Color: clr})
}

func (r *GizmoRecorder) DrawSphere(center mgl64.Vec3, radius float64, clr color.Color) {
	r.Spheres = append(r.Spheres, GizmoSphere{Center: center, Radius: radius, Color: clr})
}

func (r *GizmoRecorder) Reset() {
	r.Rays = r.Rays[:0]
	r.Spheres = r.Spheres[:0]
}
