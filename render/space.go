package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/duckpond/obj"
)

// Palette picks a color for a collider. A nil result falls back to the
// drawer's defaults.
type Palette func(col *obj.Collider) color.Color

// DrawSpace outlines every collider footprint in the collision world.
func DrawSpace(screen *ebiten.Image, cam *Camera, cw *obj.CollisionWorld, palette Palette) {
	if cw == nil || cw.Space() == nil || screen == nil || cam == nil {
		return
	}
	cp.DrawSpace(cw.Space(), &spaceDrawer{screen: screen, cam: cam, palette: palette})
}

type spaceDrawer struct {
	screen  *ebiten.Image
	cam     *Camera
	palette Palette
}

func (d *spaceDrawer) point(v cp.Vector) (float32, float32) {
	x, y := d.cam.WorldToScreen(v.X, v.Y)
	return float32(x), float32(y)
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	x, y := d.point(pos)
	r := float32(radius * d.cam.Scale())
	vector.FillCircle(d.screen, x, y, r, fcolorToRGBA(fill, 0.35), true)
	vector.StrokeCircle(d.screen, x, y, r, 1, fcolorToRGBA(fill, 1), true)
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	ax, ay := d.point(a)
	bx, by := d.point(b)
	vector.StrokeLine(d.screen, ax, ay, bx, by, 1, fcolorToRGBA(fill, 1), true)
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	ax, ay := d.point(a)
	bx, by := d.point(b)
	w := float32(math.Max(1, 2*radius*d.cam.Scale()))
	vector.StrokeLine(d.screen, ax, ay, bx, by, w, fcolorToRGBA(fill, 1), true)
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count == 0 {
		return
	}
	c := fcolorToRGBA(fill, 1)
	for i := 0; i < count; i++ {
		ax, ay := d.point(verts[i])
		bx, by := d.point(verts[(i+1)%count])
		vector.StrokeLine(d.screen, ax, ay, bx, by, 2, c, true)
	}
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.point(pos)
	vector.FillCircle(d.screen, x, y, float32(size/2), fcolorToRGBA(fill, 1), true)
}

func (d *spaceDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *spaceDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return shapeColor(shape, d.palette)
}

func (d *spaceDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *spaceDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *spaceDrawer) Data() interface{} {
	return nil
}

func shapeColor(shape *cp.Shape, palette Palette) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if col, ok := shape.UserData.(*obj.Collider); ok && palette != nil {
		if c := palette(col); c != nil {
			return toFColor(c)
		}
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func toFColor(c color.Color) cp.FColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return cp.FColor{R: float32(n.R) / 255, G: float32(n.G) / 255, B: float32(n.B) / 255, A: float32(n.A) / 255}
}

// fcolorToRGBA converts c, scaling its alpha by alpha.
func fcolorToRGBA(c cp.FColor, alpha float32) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	a := c.A * alpha
	// premultiplied for ebiten
	return color.RGBA{R: clamp(c.R * a), G: clamp(c.G * a), B: clamp(c.B * a), A: clamp(a)}
}
