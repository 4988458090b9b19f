package obj

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
)

// Pose is a world position plus a ground-plane facing. It is a plain value:
// steering helpers take a Pose and return the updated one.
type Pose struct {
	Position mgl64.Vec3
	Forward  mgl64.Vec3
}

// NewPose builds a pose whose forward is flattened and normalized. A forward
// without a ground direction falls back to +z.
func NewPose(position, forward mgl64.Vec3) Pose {
	dir, ok := common.SafeNormalize(common.Flatten(forward))
	if !ok {
		dir = common.Forward
	}
	return Pose{Position: position, Forward: dir}
}

func (p Pose) Yaw() float64 {
	return common.Yaw(p.Forward)
}

// Matrix is the local-to-world transform of the pose.
func (p Pose) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position.Elem()).Mul4(mgl64.HomogRotate3DY(p.Yaw()))
}

// TransformPoint maps a point from pose-local space into world space.
func (p Pose) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(local, p.Matrix())
}

func (p Pose) Translate(delta mgl64.Vec3) Pose {
	p.Position = p.Position.Add(delta)
	return p
}

func (p Pose) WithForward(dir mgl64.Vec3) Pose {
	if d, ok := common.SafeNormalize(common.Flatten(dir)); ok {
		p.Forward = d
	}
	return p
}

// Turn rotates the facing by yaw radians.
func (p Pose) Turn(yaw float64) Pose {
	p.Forward = common.FromYaw(p.Yaw() + yaw)
	return p
}

// Steer rotates the pose toward dir by at most maxDelta radians.
func Steer(p Pose, dir mgl64.Vec3, maxDelta float64) Pose {
	return p.WithForward(common.RotateTowards(p.Forward, dir, maxDelta))
}

// Advance moves the pose distance units along the ground projection of dir.
func Advance(p Pose, dir mgl64.Vec3, distance float64) Pose {
	d, ok := common.SafeNormalize(common.Flatten(dir))
	if !ok || distance <= 0 {
		return p
	}
	return p.Translate(d.Mul(distance))
}
