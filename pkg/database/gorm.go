package database

import (
	"fmt"
	"time"

	"social_chat_service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPGConnection create a new gorm connection to postgreSQL
func NewPGConnection(d Connection) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < d.RetryCount; i++ {
		db, err = gorm.Open(postgres.Open(d.ConnectStr), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		logger.Log.Warn(
			"Failed to open gorm connection, retrying...",
			zap.Int("attempt", i+1),
			zap.String("address", fmt.Sprintf("[%s]", d.ConnectStr)),
			zap.Error(err),
		)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return nil, err
}
