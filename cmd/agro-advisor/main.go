package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agro-advisor/config"
	v1 "agro-advisor/internal/controllers/http/v1"
	"agro-advisor/internal/repositories"
	"agro-advisor/internal/services/advisory"
	"agro-advisor/pkg/httpserver"
	"agro-advisor/pkg/observe"
)

// @title Agro Advisor API
// @version 1.0.0
// @description Maize planting and crop health advice for farmers, built on the Open-Meteo forecast API and Agromonitoring satellite imagery.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Advisory
// @tag.description Planting advice, polygon registration and crop health operations
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load configuration:", err)
		os.Exit(1)
	}

	writers := []io.Writer{os.Stdout}
	var hook *observe.SentryHook
	if cnf.SentryDSN != "" {
		hook = observe.NewSentryHook(cnf.AppEnv, cnf.AppName, 0, cnf.IsDevelopment(), cnf.SentryDSN)
		writers = append(writers, hook)
	}

	l := observe.NewZapLogger(cnf.AppName, writers...)
	if hook != nil {
		hook.SetLogger(l)
	}

	if err := cnf.Validate(); err != nil {
		l.Fatal("invalid configuration", map[string]any{"err": err})
	}

	app := httpserver.InitFiberServer(cnf.AppName)

	// The agro client gets no transport-level timeout: per-call context
	// deadlines differ too much between endpoints (20s create, 90s stats).
	weatherRepo := repositories.NewOpenMeteoRepository(cnf.Weather, l, &http.Client{})
	imageryRepo, err := repositories.NewAgroRepository(cnf.Imagery, l, &http.Client{})
	if err != nil {
		l.Fatal("cannot initialize imagery repository", map[string]any{"err": err})
	}

	plantingService := advisory.NewPlantingService(weatherRepo, l)
	polygonService := advisory.NewPolygonService(imageryRepo, l)
	healthService := advisory.NewCropHealthService(imageryRepo, cnf.Advisory, l)

	v1.NewRouter(
		app,
		plantingService,
		polygonService,
		healthService,
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{"port": cnf.Port})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		observe.Flush()
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}
