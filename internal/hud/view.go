package hud

type ToastView struct {
	Text  string
	Tone  Tone
	Alpha float64
}

// View is a copy of everything the renderer draws in one frame.
type View struct {
	Player          PlayerState
	Population      int
	Status          Status
	ControlsEnabled bool
	ShootReady      bool
	Flash           bool
	Toasts          []ToastView
}

func (h *HUD) View() View {
	now := h.now()
	v := View{
		Player:          h.player,
		Population:      h.population,
		Status:          h.status,
		ControlsEnabled: h.controls,
		ShootReady:      h.ShootReady(),
		Flash:           h.Flashing(),
	}
	for _, t := range h.Toasts() {
		alpha := 1.0
		if age := now.Sub(t.Born); age > ToastLifetime {
			alpha = 1 - float64(age-ToastLifetime)/float64(ToastFade)
		}
		v.Toasts = append(v.Toasts, ToastView{Text: t.Text, Tone: t.Tone, Alpha: alpha})
	}
	return v
}
