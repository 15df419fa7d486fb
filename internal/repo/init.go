package repo

import (
	"github.com/KNICEX/binance-signals/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Notification{})
}
