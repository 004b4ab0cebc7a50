package db

import (
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"time"

	"quill/internal/logging"
	"quill/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = logging.New("db")

// newGormLogger reports slow queries and errors. A lookup that finds
// nothing is an ordinary 404, not a warning.
func newGormLogger(out io.Writer) logger.Interface {
	return logger.New(stdlog.New(out, "\r\n", stdlog.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Open connects with the given driver ("postgres" or "sqlite") and migrates
// the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(os.Stdout),
		TranslateError: true,
		// deleting a user or post leaves dangling references behind
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; transactions never nest a second connection
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("database connection established", slog.String("driver", driver))

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostView{},
		&models.Comment{},
		&models.CommentLink{},
		&models.Reaction{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database migration completed")
	return nil
}
