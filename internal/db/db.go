package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/havenlisten/haven/internal/chat"
	"github.com/havenlisten/haven/internal/models"
	"github.com/havenlisten/haven/internal/wall"
)

// Connect opens the MySQL connection and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates or updates all tables. Shared by server, worker and tests.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&wall.Submission{},
		&wall.ModerationAudit{},
		&chat.Session{},
		&chat.Message{},
	)
}
