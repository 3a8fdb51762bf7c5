package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/activity"
	"taskhub/internal/auth"
	"taskhub/internal/comments"
	"taskhub/internal/config"
	"taskhub/internal/db"
	"taskhub/internal/httpserver"
	"taskhub/internal/logging"
	"taskhub/internal/projects"
	"taskhub/internal/tasks"
)

func main() {
	ctx := context.Background()
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbConn, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if err := db.RunMigrations(ctx, dbConn, "sql"); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userStore := auth.NewStore(dbConn)
	if err := userStore.SeedFromFile(ctx, cfg.UsersPath, cfg.BcryptCost); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	provider := auth.NewGoogleProvider(cfg.GoogleClientID)
	authSvc := auth.NewService(userStore, issuer, provider, cfg.BcryptCost)

	handler := httpserver.NewRouter(httpserver.Deps{
		Logger:     logger,
		AuthSvc:    authSvc,
		UserStore:  userStore,
		Projects:   projects.NewStore(dbConn),
		Tasks:      tasks.NewStore(dbConn),
		Comments:   comments.NewStore(dbConn),
		Activity:   activity.NewStore(dbConn),
		BcryptCost: cfg.BcryptCost,
		CORSOrigin: cfg.CORSOrigin,
	})
	server := httpserver.New(cfg.HTTPAddr, handler, logger, httpserver.Timeouts{
		Read:  cfg.HTTPReadTimeout,
		Write: cfg.HTTPWriteTimeout,
		Idle:  cfg.HTTPIdleTimeout,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
