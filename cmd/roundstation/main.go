package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/piotrkadlec/roundstation/internal/config"
	"github.com/piotrkadlec/roundstation/internal/display"
	"github.com/piotrkadlec/roundstation/internal/logging"
	"github.com/piotrkadlec/roundstation/internal/portal"
	"github.com/piotrkadlec/roundstation/internal/station"
	"github.com/piotrkadlec/roundstation/internal/store"
	"github.com/piotrkadlec/roundstation/internal/weather"
	"github.com/piotrkadlec/roundstation/internal/wifi"
)

// exitRestart tells the supervisor to start the process again: the
// equivalent of the device rebooting itself after a config save.
const exitRestart = 3

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg, "roundstation")
	slog.SetDefault(logger)

	if cfg.InsecureTLS {
		logger.Warn("tls certificate verification disabled for upstream calls")
	}

	settings, err := store.Open(cfg.DBPath, cfg.FallbackPlace)
	if err != nil {
		logger.Error("settings store unavailable", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer settings.Close()

	place, err := settings.LoadPlace()
	if err != nil {
		logger.Error("loading place failed", "error", err)
		os.Exit(1)
	}
	logger.Info("station booting", "place", place)

	link := wifi.NewDialLink(cfg.ProbeAddr, cfg.ProbeTimeout)

	client := weather.NewClient(weather.ClientConfig{
		GeocodeBaseURL:  cfg.GeocodeBaseURL,
		ForecastBaseURL: cfg.ForecastBaseURL,
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.HTTPTimeout,
		InsecureTLS:     cfg.InsecureTLS,
	}, link)

	present := display.NewConsole(os.Stdout)

	configPortal := portal.New(portal.Options{
		Addr: cfg.PortalAddr,
		SSID: cfg.PortalSSID,
		CurrentPlace: func() string {
			current, err := settings.LoadPlace()
			if err != nil {
				return place
			}
			return current
		},
		LinkUp: link.Connected,
		Log:    logger,
	})

	st := station.New(station.Options{
		Place:           place,
		RefreshInterval: cfg.RefreshInterval,
		IdleTimeout:     cfg.PortalIdleTimeout,
		Quantum:         cfg.TickQuantum,
		BootTimeout:     cfg.BootConnectTimeout,
		Log:             logger,
	}, link, client, settings, present, configPortal)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st.Boot(ctx)

	switch st.Run(ctx) {
	case station.OutcomeRestart:
		logger.Info("restarting after config save")
		settings.Close()
		os.Exit(exitRestart)
	default:
		logger.Info("station stopped")
	}
}
