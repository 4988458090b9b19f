package obj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/duckpond/common"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypePlayer
)

// Collider is attached to every shape in the collision world. Shapes are
// ground-plane footprints extruded between MinY and MaxY.
type Collider struct {
	Name string
	Tag  string
	MinY float64
	MaxY float64

	shape *cp.Shape
}

// Shape exposes the Chipmunk footprint, mainly for debug drawing.
func (c *Collider) Shape() *cp.Shape {
	if c == nil {
		return nil
	}
	return c.shape
}

// CollisionWorld owns the Chipmunk space that stands in for the 3D scene.
// World x/z map onto Chipmunk X/Y; height is tracked per collider.
type CollisionWorld struct {
	space     *cp.Space
	colliders []*Collider
	target    *Collider
}

func NewCollisionWorld() *CollisionWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	return &CollisionWorld{space: space}
}

// Space returns the underlying Chipmunk space.
func (cw *CollisionWorld) Space() *cp.Space {
	if cw == nil {
		return nil
	}
	return cw.space
}

// Colliders returns the static obstacles, excluding the target.
func (cw *CollisionWorld) Colliders() []*Collider {
	if cw == nil {
		return nil
	}
	return cw.colliders
}

// AddBox adds an axis-aligned box obstacle centered on (x, z).
func (cw *CollisionWorld) AddBox(name string, x, z, width, depth, minY, maxY float64) *Collider {
	bb := cp.BB{L: x - width/2, B: z - depth/2, R: x + width/2, T: z + depth/2}
	shape := cp.NewBox2(cw.space.StaticBody, bb, 0)
	return cw.addStatic(shape, name, minY, maxY)
}

// AddCircle adds a cylinder obstacle centered on (x, z).
func (cw *CollisionWorld) AddCircle(name string, x, z, radius, minY, maxY float64) *Collider {
	shape := cp.NewCircle(cw.space.StaticBody, radius, cp.Vector{X: x, Y: z})
	return cw.addStatic(shape, name, minY, maxY)
}

func (cw *CollisionWorld) addStatic(shape *cp.Shape, name string, minY, maxY float64) *Collider {
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	col := &Collider{Name: name, Tag: TagObstacle, MinY: minY, MaxY: maxY, shape: shape}
	shape.UserData = col
	shape.SetCollisionType(collisionTypeSolid)
	cw.space.AddShape(shape)
	cw.colliders = append(cw.colliders, col)
	return col
}

// ClearObstacles removes every static obstacle. The target is kept.
func (cw *CollisionWorld) ClearObstacles() {
	if cw == nil {
		return
	}
	for _, col := range cw.colliders {
		cw.space.RemoveShape(col.shape)
	}
	cw.colliders = nil
}

// SetTarget places the target's cylinder collider with its base at feet.
// The previous target shape is replaced.
func (cw *CollisionWorld) SetTarget(feet mgl64.Vec3, radius, height float64) *Collider {
	if cw == nil {
		return nil
	}
	cw.ClearTarget()
	shape := cp.NewCircle(cw.space.StaticBody, radius, toPlane(feet))
	col := &Collider{Name: TagPlayer, Tag: TagPlayer, MinY: feet.Y(), MaxY: feet.Y() + height, shape: shape}
	shape.UserData = col
	shape.SetCollisionType(collisionTypePlayer)
	cw.space.AddShape(shape)
	cw.target = col
	return col
}

// ClearTarget removes the target collider, if any.
func (cw *CollisionWorld) ClearTarget() {
	if cw == nil || cw.target == nil {
		return
	}
	cw.space.RemoveShape(cw.target.shape)
	cw.target = nil
}

// CastRay returns the first collider surface along the ray within maxDistance.
func (cw *CollisionWorld) CastRay(origin, dir mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	return cw.castRay(origin, dir, maxDistance, "")
}

// Ignoring returns a RayCaster that looks through colliders tagged tag.
func (cw *CollisionWorld) Ignoring(tag string) RayCaster {
	return filteredCaster{cw: cw, ignore: tag}
}

type filteredCaster struct {
	cw     *CollisionWorld
	ignore string
}

func (f filteredCaster) CastRay(origin, dir mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	return f.cw.castRay(origin, dir, maxDistance, f.ignore)
}

func (cw *CollisionWorld) castRay(origin, dir mgl64.Vec3, maxDistance float64, ignore string) (RayHit, bool) {
	if cw == nil || cw.space == nil || maxDistance <= 0 {
		return RayHit{}, false
	}
	dir, ok := common.SafeNormalize(dir)
	if !ok {
		return RayHit{}, false
	}

	end := origin.Add(dir.Mul(maxDistance))
	best := math.Inf(1)
	var hit *Collider

	cw.eachCandidate(origin, end, 0, func(col *Collider, tIn, tOut float64) {
		if ignore != "" && col.Tag == ignore {
			return
		}
		yIn, yOut, ok := verticalSpan(origin.Y(), end.Y()-origin.Y(), col.MinY, col.MaxY, 0)
		if !ok {
			return
		}
		lo := math.Max(tIn, yIn)
		hi := math.Min(tOut, yOut)
		if lo > hi || lo >= best {
			return
		}
		best = lo
		hit = col
	})

	if hit == nil {
		return RayHit{}, false
	}
	dist := best * maxDistance
	return RayHit{Point: origin.Add(dir.Mul(dist)), Distance: dist, Tag: hit.Tag}, true
}

// SweepSphere moves a sphere from origin along dir and reports the first
// collider it touches. Heights are tested against the vertical band the
// sphere covers over the whole sweep.
func (cw *CollisionWorld) SweepSphere(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDistance float64) (SweepHit, bool) {
	if cw == nil || cw.space == nil || maxDistance < 0 {
		return SweepHit{}, false
	}
	dir, ok := common.SafeNormalize(dir)
	if !ok {
		return SweepHit{}, false
	}
	if radius < 0 {
		radius = 0
	}

	end := origin.Add(dir.Mul(maxDistance))
	best := math.Inf(1)
	var hit *Collider

	cw.eachCandidate(origin, end, radius, func(col *Collider, tIn, _ float64) {
		if _, _, ok := verticalSpan(origin.Y(), end.Y()-origin.Y(), col.MinY, col.MaxY, radius); !ok {
			return
		}
		if tIn < best {
			best = tIn
			hit = col
		}
	})

	if hit == nil {
		return SweepHit{}, false
	}
	dist := best * maxDistance
	return SweepHit{Point: origin.Add(dir.Mul(dist)), Distance: dist, Tag: hit.Tag}, true
}

// eachCandidate reports every collider whose footprint (inflated by radius)
// the planar projection of start->end crosses, with the entry and exit
// fractions along the segment.
func (cw *CollisionWorld) eachCandidate(start, end mgl64.Vec3, radius float64, f func(col *Collider, tIn, tOut float64)) {
	a := toPlane(start)
	b := toPlane(end)

	type crossing struct {
		col       *Collider
		tIn, tOut float64
	}
	var found []crossing

	switch {
	case a.Distance(b) < common.Epsilon:
		cw.space.EachShape(func(shape *cp.Shape) {
			col, ok := shape.UserData.(*Collider)
			if ok && shape.PointQuery(a).Distance <= radius {
				found = append(found, crossing{col: col, tIn: 0, tOut: 1})
			}
		})
	case radius > 0:
		// The spatial index culls by unpadded bounds, so padded sweeps test
		// every shape.
		cw.space.EachShape(func(shape *cp.Shape) {
			var info cp.SegmentQueryInfo
			if !shape.SegmentQuery(a, b, radius, &info) {
				return
			}
			if col, ok := shape.UserData.(*Collider); ok {
				found = append(found, crossing{col: col, tIn: info.Alpha, tOut: exitFraction(shape, a, b, radius)})
			}
		})
	default:
		cw.space.SegmentQuery(a, b, 0, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
			if col, ok := shape.UserData.(*Collider); ok {
				found = append(found, crossing{col: col, tIn: alpha, tOut: exitFraction(shape, a, b, 0)})
			}
		}, nil)
	}

	for _, c := range found {
		f(c.col, c.tIn, c.tOut)
	}
}

// exitFraction finds where a->b leaves the shape by querying it backwards.
func exitFraction(shape *cp.Shape, a, b cp.Vector, radius float64) float64 {
	var back cp.SegmentQueryInfo
	if shape.SegmentQuery(b, a, radius, &back) {
		return 1 - back.Alpha
	}
	return 1
}

// verticalSpan returns the fractions of y0 + dy*t (t in [0,1]) that lie in
// [minY-pad, maxY+pad].
func verticalSpan(y0, dy, minY, maxY, pad float64) (float64, float64, bool) {
	minY -= pad
	maxY += pad
	if math.Abs(dy) < common.Epsilon {
		if y0 < minY || y0 > maxY {
			return 0, 0, false
		}
		return 0, 1, true
	}
	t1 := (minY - y0) / dy
	t2 := (maxY - y0) / dy
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	lo := math.Max(0, t1)
	hi := math.Min(1, t2)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

func toPlane(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Z()}
}
