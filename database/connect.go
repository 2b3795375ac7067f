// file: database/connect.go
package database

import (
	"log"
	"time"

	"NebulaCTF/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	var err error
	// TranslateError turns driver duplicate-key errors into gorm.ErrDuplicatedKey,
	// which the submission and hint services rely on to resolve credit races.
	DB, err = gorm.Open(mysql.Open(config.C.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	// Keep connections younger than MySQL's wait_timeout so they are
	// re-established instead of dying mid-request.
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection successfully established.")
}
