package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Camera maps the ground plane onto the screen, looking straight down. World
// x runs right and world z runs up the screen.
type Camera struct {
	CenterX float64
	CenterZ float64

	screenW int
	screenH int
	scale   float64
	off     *ebiten.Image

	// smoothing factor (0..1). higher -> faster follow
	smooth float64
	// world bounds in world units; empty means unbounded
	bounds Bounds
}

// Bounds is a rectangle on the ground plane.
type Bounds struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

func (b Bounds) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxZ <= b.MinZ
}

// NewCamera creates a camera for a screen of w by h pixels where one world
// unit spans scale pixels.
func NewCamera(w, h int, scale float64) *Camera {
	if scale <= 0 {
		scale = 1
	}
	return &Camera{screenW: w, screenH: h, scale: scale, smooth: 0.15}
}

func (c *Camera) SetScale(s float64) {
	if s <= 0 {
		return
	}
	c.scale = s
}

func (c *Camera) Scale() float64 { return c.scale }

func (c *Camera) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if c.screenW == w && c.screenH == h {
		return
	}
	c.screenW = w
	c.screenH = h
	c.off = nil
}

// SetBounds keeps the view inside b. An empty b removes the limit.
func (c *Camera) SetBounds(b Bounds) {
	c.bounds = b
}

func (c *Camera) SetSmooth(f float64) {
	c.smooth = math.Max(0, math.Min(1, f))
}

// Update eases the camera toward the target point.
func (c *Camera) Update(targetX, targetZ float64) {
	if c.smooth <= 0 {
		c.SnapTo(targetX, targetZ)
		return
	}
	c.CenterX += (targetX - c.CenterX) * c.smooth
	c.CenterZ += (targetZ - c.CenterZ) * c.smooth
	c.snap()
}

// SnapTo centers the camera immediately.
func (c *Camera) SnapTo(x, z float64) {
	c.CenterX = x
	c.CenterZ = z
	c.snap()
}

// snap aligns the center to whole screen pixels and clamps it to the bounds.
func (c *Camera) snap() {
	c.CenterX = math.Round(c.CenterX*c.scale) / c.scale
	c.CenterZ = math.Round(c.CenterZ*c.scale) / c.scale
	if c.bounds.Empty() {
		return
	}
	halfW := float64(c.screenW) / c.scale / 2
	halfH := float64(c.screenH) / c.scale / 2
	c.CenterX = clampAxis(c.CenterX, c.bounds.MinX+halfW, c.bounds.MaxX-halfW)
	c.CenterZ = clampAxis(c.CenterZ, c.bounds.MinZ+halfH, c.bounds.MaxZ-halfH)
}

// clampAxis clamps v to [lo, hi], centering when the view is wider than the
// bounds.
func clampAxis(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

func (c *Camera) WorldToScreen(x, z float64) (float64, float64) {
	sx := float64(c.screenW)/2 + (x-c.CenterX)*c.scale
	sy := float64(c.screenH)/2 - (z-c.CenterZ)*c.scale
	return sx, sy
}

func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	x := c.CenterX + (sx-float64(c.screenW)/2)/c.scale
	z := c.CenterZ - (sy-float64(c.screenH)/2)/c.scale
	return x, z
}

// Render clears an offscreen buffer, lets drawWorld fill it and copies the
// result onto screen.
func (c *Camera) Render(screen *ebiten.Image, drawWorld func(world *ebiten.Image)) {
	if c.off == nil {
		c.off = ebiten.NewImage(c.screenW, c.screenH)
	}

	c.off.Clear()
	if drawWorld != nil {
		drawWorld(c.off)
	}

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(c.off, op)
}
