package database

import (
	"warkop-pos/internal/model"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Table{},
		&model.Order{},
		&model.OrderLine{},
		&model.Payment{},
		&model.CustomerOTPSession{},
	)
}
