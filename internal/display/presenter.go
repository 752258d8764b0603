// Package display is the sink end of the station: it receives primitive
// values from the scheduler and turns them into frames. Nothing here touches
// the network or the settings store.
package display

import (
	"fmt"
	"io"
)

// Presenter models the round panel: two mutually exclusive screens and,
// while the dashboard is up, independent field setters. Setters only queue
// work; Step performs a bounded slice of it so the caller's loop never
// stalls on rendering.
type Presenter interface {
	ShowConnecting()
	ShowDashboard()
	SetCityLabel(label string)
	SetTemperature(celsius float64)
	SetHumidityWind(humidityPct int, windKph float64)
	SetCondition(label string)
	SetAPActive(active bool)
	Step()
}

type screen int

const (
	screenConnecting screen = iota
	screenDashboard
)

// maxOpsPerStep bounds how much queued redraw work one Step performs.
const maxOpsPerStep = 8

// Console renders the panel as single text frames on a writer. It is driven
// from the scheduler thread only and holds no locks.
type Console struct {
	w io.Writer

	queue []func()
	dirty bool

	screen       screen
	city         string
	temperatureC float64
	humidityPct  int
	windKph      float64
	condition    string
	apActive     bool
	haveData     bool
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, condition: "—"}
}

func (c *Console) ShowConnecting() {
	c.enqueue(func() { c.screen = screenConnecting })
}

func (c *Console) ShowDashboard() {
	c.enqueue(func() { c.screen = screenDashboard })
}

func (c *Console) SetCityLabel(label string) {
	c.enqueue(func() { c.city = label })
}

func (c *Console) SetTemperature(celsius float64) {
	c.enqueue(func() {
		c.temperatureC = celsius
		c.haveData = true
	})
}

func (c *Console) SetHumidityWind(humidityPct int, windKph float64) {
	c.enqueue(func() {
		c.humidityPct = humidityPct
		c.windKph = windKph
	})
}

func (c *Console) SetCondition(label string) {
	c.enqueue(func() { c.condition = label })
}

func (c *Console) SetAPActive(active bool) {
	c.enqueue(func() { c.apActive = active })
}

func (c *Console) enqueue(op func()) {
	c.queue = append(c.queue, op)
	c.dirty = true
}

// Step applies at most maxOpsPerStep queued updates, then redraws once if
// anything changed. Bounded and non-blocking; leftover work carries over to
// the next tick.
func (c *Console) Step() {
	if !c.dirty {
		return
	}

	n := len(c.queue)
	if n > maxOpsPerStep {
		n = maxOpsPerStep
	}
	for _, op := range c.queue[:n] {
		op()
	}
	c.queue = c.queue[n:]
	if len(c.queue) > 0 {
		return
	}

	c.render()
	c.dirty = false
}

func (c *Console) render() {
	glyph := "·"
	if c.apActive {
		glyph = "AP"
	}

	switch c.screen {
	case screenConnecting:
		fmt.Fprintf(c.w, "[%s] connecting to network...\n", glyph)
	case screenDashboard:
		if !c.haveData {
			fmt.Fprintf(c.w, "[%s] %s | --.-°C | --%% | -- km/h | %s\n", glyph, c.city, c.condition)
			return
		}
		fmt.Fprintf(c.w, "[%s] %s | %.1f°C | %d%% | %.0f km/h | %s\n",
			glyph, c.city, c.temperatureC, c.humidityPct, c.windKph, c.condition)
	}
}
