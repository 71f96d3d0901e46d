package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	firebase "firebase.google.com/go"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"naimuModeration/internal/config"
	"naimuModeration/internal/events"
	"naimuModeration/internal/handlers"
	"naimuModeration/internal/notify"
	"naimuModeration/internal/repositories"
	"naimuModeration/internal/services"
	"naimuModeration/utils"
)

type application struct {
	logger              *zap.SugaredLogger
	tokens              *utils.Manager
	userService         *services.UserService
	adHandler           *handlers.AdHandler
	reportHandler       *handlers.ReportHandler
	userHandler         *handlers.UserHandler
	notificationHandler *handlers.NotificationHandler
}

// initializeApp wires the stores, integrations, services and handlers. The
// returned cleanup closes whatever integrations were opened.
func initializeApp(ctx context.Context, cfg config.Config, db *sql.DB, logger *zap.SugaredLogger) (*application, func(), error) {
	dialect, err := repositories.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, nil, err
	}
	store := repositories.NewSQLStore(db, dialect)

	tokens, err := utils.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTTLHours)*time.Hour)
	if err != nil {
		return nil, nil, fmt.Errorf("token manager: %w", err)
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	hub := notify.NewHub(logger)
	pushers := map[string]services.Pusher{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		closers = append(closers, func() { _ = rdb.Close() })
		bridge := notify.NewRedisBridge(rdb, cfg.Redis.Channel, hub, logger)
		if err := bridge.Start(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("redis bridge: %w", err)
		}
		pushers["redis"] = bridge
		logger.Infof("redis notification fan-out on %s", cfg.Redis.Channel)
	} else {
		pushers["websocket"] = hub
		logger.Infof("redis disabled, notifications reach local websocket clients only")
	}

	if cfg.Firebase.CredentialsFile != "" {
		fb, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("firebase app: %w", err)
		}
		client, err := fb.Messaging(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("firebase messaging: %w", err)
		}
		pushers["fcm"] = notify.NewFCMPusher(client, store.Notifications(), logger)
	} else {
		logger.Infof("firebase disabled, no mobile push")
	}

	var publisher services.EventPublisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = kp.Close() })
		publisher = kp
		logger.Infof("publishing moderation events to %s", cfg.Kafka.Topic)
	} else {
		logger.Infof("kafka disabled, moderation events are dropped")
	}

	var images services.ImageRemover
	if cfg.Storage.Bucket != "" {
		storage, err := utils.NewImageStorage(utils.StorageConfig{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		images = storage
	} else {
		logger.Infof("object storage disabled, images of deleted advertisements are kept")
	}

	notifications := &services.NotificationService{Store: store, Pushers: pushers, Logger: logger}
	bans := &services.BanService{Store: store, Notifications: notifications, Events: publisher, Logger: logger}
	adService := &services.AdService{
		Store:         store,
		Bans:          bans,
		Notifications: notifications,
		Images:        images,
		Events:        publisher,
		Logger:        logger,
	}
	reportService := &services.ReportService{
		Store:         store,
		Bans:          bans,
		Notifications: notifications,
		Images:        images,
		Events:        publisher,
		Logger:        logger,
	}
	userService := &services.UserService{
		Store:      store,
		Tokens:     tokens,
		RefreshTTL: time.Duration(cfg.Auth.RefreshTTLHours) * time.Hour,
	}

	return &application{
		logger:              logger,
		tokens:              tokens,
		userService:         userService,
		adHandler:           &handlers.AdHandler{Service: adService, Logger: logger},
		reportHandler:       &handlers.ReportHandler{Service: reportService, Logger: logger},
		userHandler:         &handlers.UserHandler{Service: userService, Bans: bans, Logger: logger},
		notificationHandler: &handlers.NotificationHandler{Service: notifications, Hub: hub, Logger: logger},
	}, cleanup, nil
}

func openDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	db.SetMaxIdleConns(35)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
