package database

import (
	"fmt"
	"log"
	"time"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

// GetDB returns the shared connection, or nil before SetupDatabase ran.
func GetDB() *gorm.DB {
	return DB
}

// Driver returns the configured SQL dialect (mysql or postgres)
func Driver() string {
	return env.GetEnv("DB_DRIVER", "mysql")
}

// Dialector builds the GORM dialector for the configured driver.
func Dialector() (gorm.Dialector, error) {
	switch Driver() {
	case "mysql":
		// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", ""),
		)
		return mysql.New(mysql.Config{
			DSN:                       dsn,   // data source name
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_NAME", ""),
			env.GetEnv("DB_PORT", "5432"),
			env.GetEnv("DB_SSLMODE", "disable"),
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", Driver())
	}
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Report{},
		&models.Sanction{},
		&models.ReportEvidence{},
		&models.Notification{},
	}
}

func SetupDatabase() {
	dialector, err := Dialector()
	if err != nil {
		panic(err)
	}

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			if env.GetEnvBool("DB_AUTO_MIGRATE", false) {
				if migrateErr := DB.AutoMigrate(Models()...); migrateErr != nil {
					log.Printf("AutoMigrate failed: %v", migrateErr)
				}
			}
			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retry number %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}
