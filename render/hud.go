package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

const hudLineHeight = 15

var hudFace ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)

// DrawHUD prints lines in the top left corner.
func DrawHUD(screen *ebiten.Image, lines []string, clr color.Color) {
	for i, line := range lines {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(8, float64(8+i*hudLineHeight))
		op.ColorScale.ScaleWithColor(clr)
		ebtext.Draw(screen, line, hudFace, op)
	}
}
