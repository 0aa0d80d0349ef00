package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zeyadhatem391/Weather/api"
	"github.com/Zeyadhatem391/Weather/config"
	"github.com/Zeyadhatem391/Weather/datasource"
	"github.com/Zeyadhatem391/Weather/logger"
	"github.com/Zeyadhatem391/Weather/metrics"
	"github.com/Zeyadhatem391/Weather/theme"
	"github.com/Zeyadhatem391/Weather/widget"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Error loading .env file", slog.Any("error", err))
	}

	// Parse command line arguments
	configFile := flag.String("config", "config.yml", "Path to configuration file")
	port := flag.Int("port", 0, "Port to run the server on (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(os.Stdout, cfg.Mode)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.Noop()
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		var err error
		appMetrics, metricsHandler, err = metrics.Setup()
		if err != nil {
			return err
		}
	}

	owm := datasource.NewOpenWeatherMapProvider(datasource.OpenWeatherMapConfig{
		APIKey:  cfg.OpenWeatherMap.APIKey,
		BaseURL: cfg.OpenWeatherMap.BaseURL,
		GeoURL:  cfg.OpenWeatherMap.GeoURL,
		Timeout: cfg.OpenWeatherMap.Timeout,
	})
	provider := datasource.NewInstrumentedProvider(owm, appMetrics)
	log.Info("Using weather provider", slog.String("provider", provider.Name()))

	themes := theme.Default()
	store := widget.NewStore(themes.Fallback())
	w := widget.New(provider, store, themes, widget.Config{
		TargetCountry:   cfg.Widget.TargetCountry,
		DefaultCity:     cfg.Widget.DefaultCity,
		SuggestionLimit: cfg.Widget.SuggestionLimit,
		ForecastLimit:   cfg.Widget.ForecastLimit,
		MiddayMarker:    cfg.Widget.MiddayMarker,
	}, log, appMetrics)

	server, err := api.NewServer(w, api.Options{
		Port:           cfg.Server.Port,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CountryLabel:   cfg.Widget.CountryLabel,
		Metrics:        metricsHandler,
	}, log, appMetrics)
	if err != nil {
		return err
	}

	// reserved before the listener opens so a user's first selection wins
	startup := w.StartLookup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		startup(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
