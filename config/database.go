package config

import (
	"fmt"
	"log"
	"net/url"

	"pqrssi-portal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN returns the connection string for the configured driver. An explicit
// DATABASE_URL wins over the individual DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	if d.Driver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Name,
		)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Dialector picks the gorm dialector for the configured driver.
func (d DatabaseConfig) Dialector() gorm.Dialector {
	if d.Driver == DriverMySQL {
		return mysql.Open(d.DSN())
	}
	return postgres.New(postgres.Config{
		DSN:                  d.DSN(),
		PreferSimpleProtocol: true,
	})
}

// GormConfig is shared by the server and the CLI. Writes outside an explicit
// transaction are not wrapped in one, so Submit and ChangeStatus own their
// transaction boundaries.
func GormConfig(appCfg *AppConfig) *gorm.Config {
	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if appCfg.IsProduction() && !appCfg.Database.DebugSQL {
		logLevel = logger.Warn
	}

	return &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel, IgnoreRecordNotFoundError: true},
		),
	}
}

// InitDB opens the database and stores it in DB.
func InitDB(appCfg *AppConfig) error {
	db, err := gorm.Open(appCfg.Database.Dialector(), GormConfig(appCfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if appCfg.Database.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		Logger.Info().Msg("database schema auto-migrated")
	}

	DB = db
	Logger.Info().Str("driver", appCfg.Database.Driver).Msg("database connected")
	return nil
}

// CloseDB releases the pool behind DB.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
