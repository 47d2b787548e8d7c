package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/billed-app/billed-api/internal/application/dispatcher"
	"github.com/billed-app/billed-api/internal/application/port"
	"github.com/billed-app/billed-api/internal/config"
	"github.com/billed-app/billed-api/internal/domain/event"
	"github.com/billed-app/billed-api/internal/infrastructure/persistence/repository"
	"github.com/billed-app/billed-api/internal/infrastructure/storage"
	httpserver "github.com/billed-app/billed-api/internal/interfaces/http"
	"github.com/billed-app/billed-api/pkg/database"
	"github.com/billed-app/billed-api/pkg/utils"
)

func main() {
	// Local overrides before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Billed API",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll("data", 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	receipts, err := newReceiptStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}

	gateway := repository.NewBillStore(db.DB, receipts, logger)

	appLogger := &zapAdapter{sugar: logger.Sugar()}

	events := dispatcher.NewDispatcher(dispatcher.WithLogger(appLogger))
	defer events.Close()
	registerEventHandlers(events, appLogger)

	serverCfg := httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if cfg.Storage.Backend == "local" {
		serverCfg.ReceiptsDir = cfg.Storage.Local.Dir
	}

	server := httpserver.NewServer(serverCfg, gateway, appLogger, httpserver.WithEvents(events))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// zapAdapter exposes the sugared logger through the key-value logging
// interface the workflow and HTTP layers depend on
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

func (a *zapAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.sugar.Infow(msg, keysAndValues...)
}

func (a *zapAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.sugar.Errorw(msg, keysAndValues...)
}

// registerEventHandlers subscribes the audit trail handler to every bill
// lifecycle event. More subscribers (mail, webhooks) plug in here.
func registerEventHandlers(d dispatcher.Dispatcher, logger *zapAdapter) {
	audit := func(ctx context.Context, evt *event.Event) error {
		logger.Info("bill event",
			"event_id", evt.ID,
			"event_type", evt.Type,
			"bill_id", evt.BillID,
			"email", evt.Email,
		)
		return nil
	}

	for _, t := range []event.Type{
		event.TypeReceiptUploaded,
		event.TypeBillSubmitted,
		event.TypeBillAccepted,
		event.TypeBillRefused,
	} {
		d.SubscribeNamed(t, "audit-log", audit)
	}
}

const ensureBucketTimeout = 10 * time.Second

func newReceiptStorage(cfg *config.Config, logger *zap.Logger) (port.ReceiptStorage, error) {
	switch cfg.Storage.Backend {
	case "minio":
		s, err := storage.NewMinioReceiptStorage(storage.MinioConfig{
			Endpoint:  cfg.Storage.Minio.Endpoint,
			AccessKey: cfg.Storage.Minio.AccessKey,
			SecretKey: cfg.Storage.Minio.SecretKey,
			Bucket:    cfg.Storage.Minio.Bucket,
			Region:    cfg.Storage.Minio.Region,
			UseSSL:    cfg.Storage.Minio.UseSSL,
			BaseURL:   cfg.Storage.BaseURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), ensureBucketTimeout)
		defer cancel()
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return storage.NewLocalReceiptStorage(cfg.Storage.Local.Dir, cfg.Storage.BaseURL, logger), nil
	}
}
