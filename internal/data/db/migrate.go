package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.TraceRecord{},
		&types.RiskRecord{},
	)
}
