package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/duckpond/obj"
)

// minGizmoPixels keeps tiny spheres visible when zoomed out.
const minGizmoPixels = 3

// DrawGizmos projects recorded rays and spheres onto the ground plane.
func DrawGizmos(screen *ebiten.Image, cam *Camera, rec *obj.GizmoRecorder) {
	if screen == nil || cam == nil || rec == nil {
		return
	}
	for _, r := range rec.Rays {
		end := r.Origin.Add(r.Dir)
		ax, ay := cam.WorldToScreen(r.Origin.X(), r.Origin.Z())
		bx, by := cam.WorldToScreen(end.X(), end.Z())
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, r.Color, true)
	}
	for _, s := range rec.Spheres {
		x, y := cam.WorldToScreen(s.Center.X(), s.Center.Z())
		radius := max(s.Radius*cam.Scale(), minGizmoPixels)
		vector.StrokeCircle(screen, float32(x), float32(y), float32(radius), 1, s.Color, true)
	}
}

// DrawBounds outlines the pond edge.
func DrawBounds(screen *ebiten.Image, cam *Camera, b Bounds, clr color.Color) {
	if screen == nil || cam == nil || b.Empty() {
		return
	}
	x0, y0 := cam.WorldToScreen(b.MinX, b.MaxZ)
	x1, y1 := cam.WorldToScreen(b.MaxX, b.MinZ)
	vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 2, clr, true)
}

// DrawDuck draws a duck as a disc in its state color with a beak toward its
// heading.
func DrawDuck(screen *ebiten.Image, cam *Camera, d *obj.Duck, radius float64) {
	if d == nil {
		return
	}
	drawBody(screen, cam, d.Pose(), radius, d.Marker())
}

func DrawPlayer(screen *ebiten.Image, cam *Camera, p *obj.Player, clr color.Color) {
	if p == nil {
		return
	}
	drawBody(screen, cam, p.Pose(), p.Config().Radius, clr)
}

func drawBody(screen *ebiten.Image, cam *Camera, pose obj.Pose, radius float64, clr color.Color) {
	pos := pose.Position
	x, y := cam.WorldToScreen(pos.X(), pos.Z())
	nose := pos.Add(pose.Forward.Mul(radius * 1.6))
	nx, ny := cam.WorldToScreen(nose.X(), nose.Z())

	vector.FillCircle(screen, float32(x), float32(y), float32(radius*cam.Scale()), clr, true)
	vector.StrokeLine(screen, float32(x), float32(y), float32(nx), float32(ny), 2, clr, true)
}
