package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"palletkiosk/internal/config"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/middleware"
	"palletkiosk/internal/route"
	"palletkiosk/internal/service"
	"palletkiosk/internal/service/capture"
	"palletkiosk/internal/service/notify"
	"palletkiosk/internal/service/panel"
	"palletkiosk/internal/service/render"
	"palletkiosk/internal/service/scanner"
	"palletkiosk/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	decoder    *scanner.QRDecoder
	hubService *websocket.HubService
	preview    *render.Preview
	auth       *middleware.Auth
	manager    *service.Manager
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	cameras, err := config.LoadCameras(cfg)
	if err != nil {
		log.Close()
		return nil, err
	}

	tmpl, err := panel.Load(cfg.PanelTemplate)
	if err != nil {
		log.Close()
		return nil, err
	}

	source := capture.NewFrameSource(capture.VideoOpener{}, capture.SourceConfig{
		RetryDelay:    cfg.RetryDelay,
		MaxRetryDelay: cfg.MaxRetryDelay,
		StopTimeout:   cfg.StopTimeout,
	}, log)
	decoder := scanner.NewQRDecoder()
	hub := websocket.NewHubService(log)
	preview := render.NewPreview(cfg.PreviewQuality, log)

	mng, err := service.NewManager(service.Dependencies{
		Source:   source,
		Scanner:  scanner.NewPipeline(decoder, cfg.ExpectedMarker, log),
		Machine:  notify.NewMachine(cfg.HoldDuration, time.Now),
		Notifier: hub,
		Preview:  preview,
		Panel:    tmpl,
		Cameras:  cameras,
	}, cfg, log)
	if err != nil {
		decoder.Close()
		log.Close()
		return nil, err
	}

	return &App{
		config:     cfg,
		logger:     log,
		decoder:    decoder,
		hubService: hub,
		preview:    preview,
		auth:       middleware.NewAuth(),
		manager:    mng,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts the kiosk down in order: HTTP
// server, driver loop, frame source.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.logger.Close()
	defer a.decoder.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.hubService.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.manager.Run(ctx)
	}()

	router := route.SetupRoutes(a.manager, a.hubService, a.preview, a.auth, a.config, a.logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	status := a.manager.Status()
	fmt.Printf("📦 Pallet Kiosk\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🎥 Camera: %s (%d configured)\n", status.Camera, len(status.Cameras))
	fmt.Printf("🏷️  Marker: %s, hold %v\n", status.Marker, a.config.HoldDuration)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		stop()
	case <-ctx.Done():
		a.logger.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Warning("HTTP shutdown: %v", shutdownErr)
	}

	wg.Wait()
	a.manager.Stop()
	a.logger.Info("Kiosk stopped")

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
