package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/duckpond/obj"
	"github.com/milk9111/duckpond/render"
	"github.com/milk9111/duckpond/system"
	"golang.org/x/image/colornames"
)

const duckRadius = 0.3

var (
	background = color.RGBA{R: 0x1d, G: 0x3b, B: 0x53, A: 0xff}
	pondEdge   = colornames.Lightskyblue
)

type Game struct {
	session *session
	input   obj.InputSource
	world   *system.World
	cam     *render.Camera
	pauseUI *ebitenui.UI

	paused     bool
	showGizmos bool
	frames     int
}

func newKeyboard() obj.InputSource {
	return render.NewKeyboard()
}

func runViewer(s *session, input obj.InputSource) error {
	view := s.cfg.View
	g := &Game{
		session:    s,
		input:      input,
		cam:        render.NewCamera(view.Width, view.Height, view.Scale),
		showGizmos: true,
	}
	if err := g.restart(); err != nil {
		return err
	}
	g.pauseUI = render.NewPauseUI(view.Width, view.Height, render.PauseActions{
		Resume: func() { g.paused = false },
		Restart: func() {
			g.world.Respawn()
			g.paused = false
		},
	})

	ebiten.SetTPS(s.cfg.Sim.TickRate)
	ebiten.SetWindowSize(view.Width, view.Height)
	ebiten.SetWindowTitle("duckpond")
	return ebiten.RunGame(g)
}

func (g *Game) restart() error {
	w, err := g.session.newWorld(g.input)
	if err != nil {
		return err
	}
	g.world = w
	g.cam.SetBounds(pondBounds(w))
	p := w.Player.Position()
	g.cam.SnapTo(p.X(), p.Z())
	return nil
}

func pondBounds(w *system.World) render.Bounds {
	b := w.Scene.Bounds
	return render.Bounds{MinX: b.MinX, MinZ: b.MinZ, MaxX: b.MaxX, MaxZ: b.MaxZ}
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showGizmos = !g.showGizmos
	}

	g.world.Step(g.session.cfg.Sim.DeltaTime())
	// a scene reload may have moved the edge
	g.cam.SetBounds(pondBounds(g.world))
	p := g.world.Player.Position()
	g.cam.Update(p.X(), p.Z())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	w := g.world

	g.cam.Render(screen, func(img *ebiten.Image) {
		render.DrawBounds(img, g.cam, pondBounds(w), pondEdge)
		render.DrawSpace(img, g.cam, w.CollisionWorld, func(col *obj.Collider) color.Color {
			if col.Tag == obj.TagPlayer {
				return w.PlayerColor
			}
			return w.ObstacleColors[col.Name]
		})
		for _, d := range w.Ducks {
			render.DrawDuck(img, g.cam, d, duckRadius)
		}
		render.DrawPlayer(img, g.cam, w.Player, w.PlayerColor)
		if g.showGizmos {
			render.DrawGizmos(img, g.cam, w.Gizmos())
		}
	})

	lines := []string{
		fmt.Sprintf("%s  tick %d  fps %.0f", w.Scene.Name, w.Tick(), ebiten.ActualFPS()),
		"W/S walk  A/D turn  Tab gizmos  Esc pause",
	}
	for _, d := range w.Ducks {
		lines = append(lines, fmt.Sprintf("%-6s %s", d.Name, d.State()))
	}
	render.DrawHUD(screen, lines, colornames.White)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	view := g.session.cfg.View
	return view.Width, view.Height
}
