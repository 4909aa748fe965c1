package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/migrations"
)

// Migrator goose 迁移封装，使用独立的 pgx 连接
type Migrator struct {
	db *sql.DB
}

// NewMigrator 创建迁移器
func NewMigrator(cfg *config.DatabaseConfig) (*Migrator, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	return NewMigratorFromDB(stdlib.OpenDB(*connCfg))
}

// NewMigratorFromDB 基于已有连接创建迁移器
func NewMigratorFromDB(sqlDB *sql.DB) (*Migrator, error) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return &Migrator{db: sqlDB}, nil
}

// Up 应用全部未执行的迁移
func (m *Migrator) Up(ctx context.Context) error {
	logger.Info("applying database migrations")
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := m.Version(ctx)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", logger.Int64("version", version))
	return nil
}

// Version 当前迁移版本
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close 关闭迁移连接
func (m *Migrator) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Migrate 启动时执行迁移
func Migrate(ctx context.Context, cfg *config.DatabaseConfig) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(ctx)
}
