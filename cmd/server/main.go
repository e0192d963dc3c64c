package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyhub/internal/config"
	"studyhub/internal/db"
	"studyhub/internal/handler"
	"studyhub/internal/notify"
	"studyhub/internal/repository"
	"studyhub/internal/router"
	"studyhub/internal/service"
	"studyhub/internal/timer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults, err := config.LoadTimerDefaults(cfg.TimerDefaultsPath)
	if err != nil {
		log.Fatalf("load timer defaults: %v", err)
	}
	defaultsFeed := timer.NewSettingsFeed(defaults)
	if cfg.TimerDefaultsPath != "" {
		if err := config.WatchTimerDefaults(ctx, cfg.TimerDefaultsPath, defaultsFeed); err != nil {
			log.Printf("timer defaults will not reload: %v", err)
		}
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if _, err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	sessionRepo := repository.NewSessionRepository(database)

	broker := notify.NewBroker(time.Now)
	writer := service.NewSessionWriter(sessionRepo, cfg.RecorderBuffer, nil)
	defer writer.Close()

	authService := service.NewAuthService(userRepo, settingsRepo, defaultsFeed, cfg.JWTSecret, cfg.TokenTTL)
	timerService := service.NewTimerService(
		settingsRepo,
		writer,
		broker,
		defaultsFeed,
		service.WithIdleTTL(cfg.TimerIdleTTL),
	)
	defer timerService.Close()
	statsService := service.NewStatsService(sessionRepo, userRepo, time.Now)

	engine := router.New(
		authService,
		handler.NewAuthHandler(authService),
		handler.NewTimerHandler(timerService, 0),
		handler.NewStatsHandler(statsService),
		cfg.CORSOrigins,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("studyhub listening on :%s", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("run server: %v", err)
		}
	case <-ctx.Done():
		log.Println("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
