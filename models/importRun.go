package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
)

// ImportRun is the audit row written after every spreadsheet import.
type ImportRun struct {
	ID            uint      `gorm:"primary_key" json:"id"`
	CorrelationId string    `gorm:"size:100;index" json:"correlation_id"`
	Actor         string    `gorm:"size:100" json:"actor"`
	FileName      string    `gorm:"size:255" json:"file_name"`
	ImportedCount int       `json:"imported_count"`
	SkippedCount  int       `json:"skipped_count"`
	ReportCount   int       `json:"report_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (run *ImportRun) Store(ctx context.Context) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(run).Error
}
