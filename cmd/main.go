package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"naimuModeration/internal/config"
	"naimuModeration/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	addr := flag.String("addr", cfg.Server.Address, "HTTP network address")
	flag.Parse()

	zl, err := logging.New("moderation")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	db, err := openDB(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatalw("open database", "error", err)
	}
	defer db.Close()
	logger.Infof("connected to %s database", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initializeApp(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalw("initialize application", "error", err)
	}
	defer cleanup()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
		ExposedHeaders:   []string{"Authorization", "X-Request-ID"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     zap.NewStdLog(zl),
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("server stopped", "error", err)
	}
	logger.Infof("server stopped")
}
