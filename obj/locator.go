package obj

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/duckpond/common"
)

// Sighting is the outcome of one line-of-sight probe.
type Sighting struct {
	Origin      mgl64.Vec3
	Direction   mgl64.Vec3
	MaxDistance float64

	Hit      bool
	HitPoint mgl64.Vec3
	HitTag   string
	Visible  bool
}

// Locator answers whether a target is directly visible from a point. It only
// queries the scene and keeps no state between calls.
type Locator struct {
	Scene     RayCaster
	TargetTag string
}

func NewLocator(scene RayCaster, targetTag string) *Locator {
	if targetTag == "" {
		targetTag = TagPlayer
	}
	return &Locator{Scene: scene, TargetTag: targetTag}
}

// HasLineOfSight casts one ray from origin toward center. The first surface
// hit is always recorded; the target counts as visible only when that
// surface carries the target tag.
func (l *Locator) HasLineOfSight(origin, center mgl64.Vec3, maxDistance float64) Sighting {
	s := Sighting{Origin: origin, MaxDistance: maxDistance}
	if l == nil || l.Scene == nil {
		return s
	}

	dir, ok := common.SafeNormalize(center.Sub(origin))
	if !ok {
		return s
	}
	s.Direction = dir

	hit, ok := l.Scene.CastRay(origin, dir, maxDistance)
	if !ok {
		return s
	}
	s.Hit = true
	s.HitPoint = hit.Point
	s.HitTag = hit.Tag
	s.Visible = hit.Tag == l.TargetTag
	return s
}
