package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/application/service"
	"github.com/ledgerline/docflow/internal/config"
	"github.com/ledgerline/docflow/internal/infrastructure/inventory"
	"github.com/ledgerline/docflow/internal/infrastructure/notify"
	"github.com/ledgerline/docflow/internal/infrastructure/persistence/repository"
	"github.com/ledgerline/docflow/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/ledgerline/docflow/internal/interfaces/http"
	"github.com/ledgerline/docflow/pkg/database"
	"github.com/ledgerline/docflow/pkg/utils"
)

func main() {
	// Local development credentials; missing .env is fine.
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

	logger.Info("Starting document workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

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
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	// Repositories
	typeRepo := repository.NewDocumentTypeRepository(db.DB, logger)
	cfgRepo := repository.NewStatusConfigRepository(db.DB, logger)
	ruleRepo := repository.NewApprovalRuleRepository(db.DB, logger)
	docRepo := repository.NewDocumentRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	// Collaborators
	movementStore := inventory.NewMovementStore(db.DB, logger)

	var notifier port.Notifier
	if cfg.Lark.Enabled {
		notifier = notify.NewLarkNotifier(notify.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			ChatID:    cfg.Lark.ChatID,
		}, logger)
		logger.Info("Lark notifications enabled", zap.String("chat_id", cfg.Lark.ChatID))
	}

	// Application services
	resolver := service.NewStatusResolver(cfgRepo, cfg.Workflow.ConfigCacheTTL, logger)
	matcher := service.NewRuleMatcher(ruleRepo, auditRepo, logger)
	validator := service.NewDocumentValidator(logger)
	engine := service.NewTransitionEngine(
		docRepo, typeRepo, cfgRepo, auditRepo, txManager,
		resolver, matcher, validator,
		movementStore, notifier, nil,
		logger,
	)
	auditService := service.NewAuditService(auditRepo, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, auditService, resolver, &sugaredLogger{logger.Sugar()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// sugaredLogger adapts zap's sugared logger to the HTTP layer's Logger
// interface.
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l *sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
