package migrate

import (
	"errors"
	"fmt"

	"bookmarket/internal/domain/model"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// migrationPath が空ならモデルからAutoMigrateする（開発用）
func Run(db *gorm.DB, migrationPath string, log *zap.Logger) error {
	if migrationPath == "" {
		if err := db.AutoMigrate(
			&model.User{},
			&model.Book{},
			&model.Order{},
			&model.OrderItem{},
			&model.PaymentProof{},
			&model.AuditLog{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migrate done")
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	log.Info("migrations applied", zap.String("path", migrationPath))
	return nil
}
