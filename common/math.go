package common

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// angleEpsilon decides when two ground directions count as anti-parallel.
const angleEpsilon = 1e-9

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// Flatten projects v onto the ground plane.
func Flatten(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// PlanarDistance is the distance between a and b measured on the ground plane.
func PlanarDistance(a, b mgl64.Vec3) float64 {
	return Flatten(b.Sub(a)).Len()
}

// SafeNormalize returns the unit vector of v, or false when v is too short
// to have a direction.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// Yaw returns the heading of v around +y in radians. 0 faces +z and
// positive angles turn toward +x.
func Yaw(v mgl64.Vec3) float64 {
	return math.Atan2(v.X(), v.Z())
}

// FromYaw is the unit ground-plane vector for a heading.
func FromYaw(yaw float64) mgl64.Vec3 {
	s, c := math.Sincos(yaw)
	return mgl64.Vec3{s, 0, c}
}

// NormalizeAngle wraps an angle to [-pi, pi).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// PlanarAngle is the unsigned angle between the ground projections of a and b.
func PlanarAngle(a, b mgl64.Vec3) float64 {
	ua, okA := SafeNormalize(Flatten(a))
	ub, okB := SafeNormalize(Flatten(b))
	if !okA || !okB {
		return 0
	}
	return math.Abs(NormalizeAngle(Yaw(ub) - Yaw(ua)))
}

// RotateTowards turns the ground direction current toward desired by at
// most maxDelta radians and never past it. The result is unit length with
// y = 0. Anti-parallel inputs always turn with positive yaw.
func RotateTowards(current, desired mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	want, ok := SafeNormalize(Flatten(desired))
	if !ok {
		return current
	}
	have, ok := SafeNormalize(Flatten(current))
	if !ok {
		return want
	}
	if maxDelta < 0 {
		maxDelta = 0
	}

	from := Yaw(have)
	diff := NormalizeAngle(Yaw(want) - from)
	if math.Abs(math.Abs(diff)-math.Pi) < angleEpsilon {
		diff = math.Pi
	}
	if math.Abs(diff) <= maxDelta {
		return want
	}
	return FromYaw(from + math.Copysign(maxDelta, diff))
}

// RandomInsideUnitCircle returns a uniformly distributed point in the unit disk.
func RandomInsideUnitCircle(rng *rand.Rand) mgl64.Vec2 {
	r := math.Sqrt(rng.Float64())
	s, c := math.Sincos(2 * math.Pi * rng.Float64())
	return mgl64.Vec2{r * c, r * s}
}

// RandomGroundDirection maps a random disk point onto x/z and normalizes it.
// Draws too close to the disk center are retried.
func RandomGroundDirection(rng *rand.Rand) mgl64.Vec3 {
	for {
		p := RandomInsideUnitCircle(rng)
		if dir, ok := SafeNormalize(mgl64.Vec3{p.X(), 0, p.Y()}); ok {
			return dir
		}
	}
}
