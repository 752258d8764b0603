// Package station holds the cooperative scheduler that ties the whole
// device together: one tick function, called in a tight loop, advances the
// display, the config portal and the periodic weather refresh in a fixed
// order. Everything mutable lives on the Station struct; there is exactly
// one thread driving it.
package station

import (
	"context"
	"log/slog"
	"time"

	"github.com/piotrkadlec/roundstation/internal/display"
	"github.com/piotrkadlec/roundstation/internal/weather"
)

// Outcome is what a tick (or the whole run) resolves to. A requested restart
// is not an error: it is the planned reinitialization after a config save,
// performed by the process wrapper rather than a primitive inside the loop.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeRestart
	OutcomeStopped
)

// WeatherClient is the two-stage fetch the scheduler triggers on its timer.
type WeatherClient interface {
	Fetch(ctx context.Context, place string) (weather.Snapshot, error)
}

// SettingsStore persists the place name before a restart.
type SettingsStore interface {
	SavePlace(value string) error
}

// ConfigPortal is the access-point surface. Active implies the portal is
// reachable; Deactivate must tear it down.
type ConfigPortal interface {
	Activate(now time.Time) error
	Deactivate() error
	Active() bool
	StartedAt() time.Time
	LastActivity() time.Time
	ClientCount() int
	PendingSave() (string, bool)
}

// Link reports network state.
type Link interface {
	Connected() bool
}

// Options are the scheduler's fixed timings plus the boot place name.
type Options struct {
	Place           string
	RefreshInterval time.Duration
	IdleTimeout     time.Duration
	Quantum         time.Duration
	BootTimeout     time.Duration
	Log             *slog.Logger
}

// Station owns all shared mutable state of the firmware loop.
type Station struct {
	opts    Options
	log     *slog.Logger
	link    Link
	client  WeatherClient
	store   SettingsStore
	present display.Presenter
	portal  ConfigPortal

	place      string
	snapshot   *weather.Snapshot
	lastUpdate time.Time
	refreshNow bool

	// Injectable for tests; real runs use the wall clock.
	now   func() time.Time
	sleep func(time.Duration)
}

func New(opts Options, link Link, client WeatherClient, store SettingsStore, present display.Presenter, portal ConfigPortal) *Station {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Station{
		opts:    opts,
		log:     opts.Log,
		link:    link,
		client:  client,
		store:   store,
		present: present,
		portal:  portal,
		place:   opts.Place,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Boot runs the bounded initial connect attempt: the loop alternates a link
// check with a display step so the connecting screen keeps animating, and
// gives up after the boot window. A failed connect is not fatal; the
// station continues offline with the portal still available. The portal is
// raised unconditionally afterwards so the place can be reconfigured even
// when everything works.
func (s *Station) Boot(ctx context.Context) {
	s.present.ShowConnecting()

	deadline := s.now().Add(s.opts.BootTimeout)
	connected := false
	for {
		s.present.Step()
		if s.link.Connected() {
			connected = true
			break
		}
		if !s.now().Before(deadline) || ctx.Err() != nil {
			break
		}
		s.sleep(s.opts.Quantum)
	}

	now := s.now()
	s.lastUpdate = now
	if connected {
		// One refresh right away instead of waiting a full interval.
		s.refreshNow = true
		s.log.Info("link up", "within", s.opts.BootTimeout)
	} else {
		s.log.Warn("link not up after boot window, continuing offline")
	}

	s.present.ShowDashboard()
	s.present.SetCityLabel(weather.FoldLabel(s.place))

	if err := s.portal.Activate(now); err != nil {
		s.log.Error("portal activation failed", "error", err)
	} else {
		s.present.SetAPActive(true)
	}
}

// Tick advances every cooperative activity one bounded step, strictly in
// this order: display redraw, the fixed yield, portal housekeeping, pending
// save, periodic refresh. The display goes first so UI latency is bounded
// by the quantum, not by a slow fetch.
func (s *Station) Tick(ctx context.Context) Outcome {
	now := s.now()

	s.present.Step()
	s.sleep(s.opts.Quantum)

	if s.portal.Active() && s.portalIdle(now) {
		if err := s.portal.Deactivate(); err != nil {
			s.log.Error("portal teardown failed", "error", err)
		}
		s.present.SetAPActive(false)
		s.log.Info("portal idle timeout, access point down")
	}

	if place, ok := s.portal.PendingSave(); ok {
		s.place = place
		if err := s.store.SavePlace(place); err != nil {
			// The firmware had no way to fail here; restart regardless so a
			// transient write error cannot wedge the device mid-save.
			s.log.Error("persisting place failed", "place", place, "error", err)
		}
		s.log.Info("place saved, restart requested", "place", place)
		return OutcomeRestart
	}

	if s.refreshNow || now.Sub(s.lastUpdate) >= s.opts.RefreshInterval {
		s.refreshNow = false
		// Reset before the attempt: a failed fetch waits out the full
		// interval like a successful one.
		s.lastUpdate = now
		s.refresh(ctx)
	}

	return OutcomeContinue
}

// Run drives ticks until a restart is requested or ctx is cancelled.
func (s *Station) Run(ctx context.Context) Outcome {
	for {
		if ctx.Err() != nil {
			s.shutdown()
			return OutcomeStopped
		}
		if s.Tick(ctx) == OutcomeRestart {
			s.shutdown()
			return OutcomeRestart
		}
	}
}

// portalIdle is true once no client has been seen for the idle window. A
// connected client holds the portal open regardless of how long ago it
// started.
func (s *Station) portalIdle(now time.Time) bool {
	if s.portal.ClientCount() > 0 {
		return false
	}
	since := s.portal.StartedAt()
	if last := s.portal.LastActivity(); last.After(since) {
		since = last
	}
	return now.Sub(since) >= s.opts.IdleTimeout
}

// refresh runs the two-stage fetch and pushes the result at the dashboard.
// Failures of any kind keep the previous snapshot; the dashboard has no
// error state, only stale data.
func (s *Station) refresh(ctx context.Context) {
	snap, err := s.client.Fetch(ctx, s.place)
	if err != nil {
		s.log.Debug("refresh skipped", "place", s.place, "error", err)
		return
	}

	s.snapshot = &snap
	s.present.SetCityLabel(snap.CityLabel)
	s.present.SetTemperature(snap.TemperatureC)
	s.present.SetHumidityWind(snap.HumidityPct, snap.WindKph)
	s.present.SetCondition(snap.Condition)
	s.log.Info("snapshot updated",
		"place", snap.CityLabel,
		"tempC", snap.TemperatureC,
		"humidityPct", snap.HumidityPct,
		"windKph", snap.WindKph,
		"condition", snap.Condition,
	)
}

func (s *Station) shutdown() {
	if s.portal.Active() {
		if err := s.portal.Deactivate(); err != nil {
			s.log.Error("portal teardown failed", "error", err)
		}
		s.present.SetAPActive(false)
	}
}
