package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nrw-report-service/internal/config"
)

func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dbCfg := cfg.DB
	database, err := gorm.Open(postgres.Open(dbCfg.DSN), &gorm.Config{
		Logger: newGormLogger(cfg.Environment, log),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}

	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}

	if err := runMigrations(database, cfg.Realtime.Channel); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func HealthCheck(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("SELECT 1").Error
}

// newGormLogger routes GORM output through zerolog, tagged as the sql
// component. SQL traces only show in development; elsewhere GORM reports slow
// queries and errors, which land at warn.
func newGormLogger(env string, log zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(
		zerologWriter{logger: log.With().Str("component", "sql").Logger(), level: writerLevel(env)},
		gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			Colorful:                  false,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  selectLogLevel(env),
		},
	)
}

const slowQueryThreshold = 500 * time.Millisecond

func selectLogLevel(env string) gormlogger.LogLevel {
	switch env {
	case "development":
		return gormlogger.Info
	case "test":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

func writerLevel(env string) zerolog.Level {
	if env == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

type zerologWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w zerologWriter) Printf(msg string, args ...interface{}) {
	w.logger.WithLevel(w.level).Msgf(msg, args...)
}
