package database

import (
	"fmt"

	"github.com/Eldesouky97/home-craft/internal/config"
	"github.com/Eldesouky97/home-craft/internal/domain"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Store{},
		&domain.Category{},
		&domain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
	}
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case "mysql":
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		if dsn == "" {
			dsn = cfg.Name + ".db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects with the configured driver, applies the pool settings and,
// when enabled, migrates the schema. The caller owns the returned pool.
func Open(cfg config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(Models()...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
