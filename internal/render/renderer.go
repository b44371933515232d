package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"lasertag/internal/hud"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	ScreenWidth  = 900
	ScreenHeight = 600

	CrosshairRadius = 24
	barHeight       = 44
	toastWidth      = 320
	toastHeight     = 22
	toastGap        = 6
)

var (
	colorSuccess = color.RGBA{78, 204, 163, 255}
	colorWarning = color.RGBA{255, 170, 0, 255}
	colorDanger  = color.RGBA{255, 75, 43, 255}
	colorInfo    = color.RGBA{255, 255, 255, 255}
	colorIdle    = color.RGBA{140, 140, 140, 255}
)

type Renderer struct {
	feed *ebiten.Image
	buf  *image.RGBA
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Draw renders one frame: the camera feed, the crosshair and the HUD.
func (r *Renderer) Draw(screen *ebiten.Image, frame image.Image, v hud.View) {
	screen.Fill(color.RGBA{30, 60, 114, 255})
	if frame != nil {
		r.DrawFeed(screen, frame)
	}
	r.DrawCrosshair(screen, v.ControlsEnabled && v.ShootReady)
	r.DrawHUD(screen, v)
	if v.Flash {
		vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, color.RGBA{128, 0, 0, 128}, false)
	}
}

// DrawFeed scales the camera frame to cover the screen, keeping its aspect.
func (r *Renderer) DrawFeed(screen *ebiten.Image, frame image.Image) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	if r.buf == nil || r.buf.Rect.Dx() != w || r.buf.Rect.Dy() != h {
		r.buf = image.NewRGBA(image.Rect(0, 0, w, h))
		r.feed = ebiten.NewImage(w, h)
	}
	draw.Draw(r.buf, r.buf.Rect, frame, b.Min, draw.Src)
	r.feed.WritePixels(r.buf.Pix)

	scale := max(float64(ScreenWidth)/float64(w), float64(ScreenHeight)/float64(h))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((ScreenWidth-float64(w)*scale)/2, (ScreenHeight-float64(h)*scale)/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(r.feed, op)
}

func (r *Renderer) DrawCrosshair(screen *ebiten.Image, armed bool) {
	c := colorIdle
	if armed {
		c = colorSuccess
	}
	cx, cy := float32(ScreenWidth/2), float32(ScreenHeight/2)
	rad := float32(CrosshairRadius)

	vector.StrokeCircle(screen, cx, cy, rad, 2, c, true)
	vector.StrokeLine(screen, cx-rad-10, cy, cx-rad/2, cy, 2, c, true)
	vector.StrokeLine(screen, cx+rad/2, cy, cx+rad+10, cy, 2, c, true)
	vector.StrokeLine(screen, cx, cy-rad-10, cx, cy-rad/2, 2, c, true)
	vector.StrokeLine(screen, cx, cy+rad/2, cx, cy+rad+10, 2, c, true)
	vector.DrawFilledCircle(screen, cx, cy, 3, c, true)
}

func (r *Renderer) DrawHUD(screen *ebiten.Image, v hud.View) {
	// Status bar
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, barHeight, color.RGBA{0, 0, 0, 160}, false)
	dot := colorDanger
	if v.Status.Connected {
		dot = colorSuccess
	}
	vector.DrawFilledCircle(screen, 14, 12, 5, dot, true)
	ebitenutil.DebugPrintAt(screen, v.Status.Text, 26, 4)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("PLAYERS %d", v.Population), ScreenWidth-100, 4)

	p := v.Player
	stats := fmt.Sprintf("%s   AMMO %d   HEALTH %d   HITS %d   SHOTS %d",
		p.Name, p.Ammo, p.Health, p.Hits, p.ShotsFired)
	ebitenutil.DebugPrintAt(screen, stats, 8, 24)

	for i, t := range v.Toasts {
		r.drawToast(screen, i, t)
	}

	hint := "[SPACE/CLICK] shoot   [R] reload   [ESC] quit"
	if !v.ControlsEnabled {
		hint = "controls disabled until connected"
	}
	vector.DrawFilledRect(screen, 0, ScreenHeight-24, ScreenWidth, 24, color.RGBA{0, 0, 0, 160}, false)
	ebitenutil.DebugPrintAt(screen, hint, 8, ScreenHeight-20)
}

func (r *Renderer) drawToast(screen *ebiten.Image, i int, t hud.ToastView) {
	x := float32(ScreenWidth - toastWidth - 10)
	y := float32(barHeight + 10 + i*(toastHeight+toastGap))

	vector.DrawFilledRect(screen, x, y, toastWidth, toastHeight, fade(color.RGBA{0, 0, 0, 180}, t.Alpha), false)
	vector.DrawFilledRect(screen, x, y, 4, toastHeight, fade(toneColor(t.Tone), t.Alpha), false)
	if t.Alpha > 0.5 {
		ebitenutil.DebugPrintAt(screen, t.Text, int(x)+10, int(y)+3)
	}
}

func toneColor(t hud.Tone) color.RGBA {
	switch t {
	case hud.ToneSuccess:
		return colorSuccess
	case hud.ToneWarning:
		return colorWarning
	case hud.ToneDanger:
		return colorDanger
	}
	return colorInfo
}

// fade scales a premultiplied colour by alpha.
func fade(c color.RGBA, alpha float64) color.RGBA {
	if alpha >= 1 {
		return c
	}
	if alpha < 0 {
		alpha = 0
	}
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}
