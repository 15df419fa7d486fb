package ioc

import (
	"github.com/KNICEX/binance-signals/internal/repo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB() *gorm.DB {
	type Config struct {
		DSN string `mapstructure:"dsn"`
	}

	var cfg Config
	unmarshalKey("db", &cfg)
	if cfg.DSN == "" {
		cfg.DSN = "signals.db"
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}
	if err = repo.InitTables(db); err != nil {
		panic(err)
	}
	return db
}
