package main

import (
	"context"
	"lasertag/internal/render"
	"lasertag/internal/session"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type Game struct {
	ctx      context.Context
	session  *session.Session
	renderer *render.Renderer
}

func NewGame(ctx context.Context, s *session.Session) *Game {
	return &Game{
		ctx:      ctx,
		session:  s,
		renderer: render.NewRenderer(),
	}
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.session.Dispatch()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.session.Shoot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.session.Reload()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.session.Stream().Frame(), g.session.HUD().View())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return render.ScreenWidth, render.ScreenHeight
}
