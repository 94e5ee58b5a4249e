package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-rag-be/internal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const module = "Database"

// slowQuery is the threshold above which a statement is logged at Warn.
const slowQuery = 500 * time.Millisecond

// sqlLogger routes gorm's statement log into the module logger.
type sqlLogger struct {
	log   logger.ILogger
	level gormlogger.LogLevel
}

func newSQLLogger(log logger.ILogger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &sqlLogger{log: log, level: level}
}

func (l *sqlLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *sqlLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(module, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *sqlLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(module, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *sqlLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(module, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *sqlLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error(module, "Query failed", map[string]interface{}{"sql": sql, "rows": rows, "elapsed": elapsed.String(), "error": err})
	case elapsed > slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn(module, "Slow query", map[string]interface{}{"sql": sql, "rows": rows, "elapsed": elapsed.String()})
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug(module, "Query", map[string]interface{}{"sql": sql, "rows": rows, "elapsed": elapsed.String()})
	}
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// NewGormDBFromDSN opens a pooled postgres connection. debug logs every statement.
func NewGormDBFromDSN(dsn string, log logger.ILogger, debug bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newSQLLogger(log, debug),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}
