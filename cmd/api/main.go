package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookmarket/internal/config"
	"bookmarket/internal/handler"
	"bookmarket/internal/infra/db"
	"bookmarket/internal/infra/logger"
	"bookmarket/internal/infra/metrics"
	"bookmarket/internal/infra/migrate"
	infraRepo "bookmarket/internal/infra/repository"
	"bookmarket/internal/infra/storage"
	"bookmarket/internal/infra/token"
	"bookmarket/internal/server"
	"bookmarket/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	if err := migrate.Run(gormDB, cfg.MigrationsPath, zl); err != nil {
		return err
	}

	//明細画像の保存先
	proofStore, err := newProofStorage(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(reg)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	bookRepo := infraRepo.NewBookGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	itemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	clock := usecase.SystemClock()
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, issuer, zl)
	bookUC := usecase.NewBookUsecase(bookRepo, txm, clock, orderMetrics, zl)
	orderUC := usecase.NewOrderUsecase(txm, userRepo, proofStore, clock, usecase.RandomCodeGenerator(), orderMetrics, zl)
	proofUC := usecase.NewPaymentProofUsecase(txm, proofStore, usecase.UUIDGenerator(), clock, orderMetrics, zl)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, proofStore, clock, orderMetrics, zl)
	dashboardUC := usecase.NewDashboardUsecase(userRepo, bookRepo, orderRepo, itemRepo, zl)
	auditUC := usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gormDB), zl)

	//Handler生成
	e := server.New(cfg, zl, reg, userRepo, server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Book:       handler.NewBookHandler(bookUC),
		Order:      handler.NewOrderHandler(orderUC, proofUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC, dashboardUC),
		AdminBook:  handler.NewAdminBookHandler(bookUC),
		AuditLog:   handler.NewAdminAuditLogHandler(auditUC),
	})

	return server.Start(ctx, e, ":"+cfg.Port, zl)
}

func newProofStorage(cfg config.Config) (usecase.ProofStorage, error) {
	if cfg.Storage.Driver == "minio" {
		return storage.NewMinioStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	}
	return storage.NewFileStore(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
}
