package storage

import (
	"fmt"
	"time"

	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/config"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"go.uber.org/zap"
	"golang.org/x/net/context"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Postgres holds request logs and admin accounts. Workload lists never
// reach it.
type Postgres struct {
	DB *gorm.DB
}

func NewPostgres(cfg config.DatabaseConfig, log *zap.Logger) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log, cfg.SlowQueryThreshold),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Postgres{DB: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Creates or updates the request_logs and admins tables
func (p *Postgres) AutoMigrate() error {
	return p.DB.AutoMigrate(
		&models.RequestLog{},
		&models.Admin{},
	)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
