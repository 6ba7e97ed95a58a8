package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"gorm.io/gorm"
)

// ReportRecord is a generated inspection report. Reports are immutable: a
// newer report for the same board supersedes an older one but does not
// overwrite it; by ReportId a later import replaces an earlier entry.
type ReportRecord struct {
	ID          uint             `gorm:"primary_key" json:"id"`
	ReportId    string           `gorm:"size:100;not null;uniqueIndex" json:"report_id" validate:"required"`
	BoardId     string           `gorm:"size:100;not null;index" json:"board_id" validate:"required"`
	Status      InspectionStatus `gorm:"size:20" json:"status"`
	GeneratedAt time.Time        `json:"generated_at"`
	HtmlContent string           `gorm:"type:longtext" json:"html_content"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// BuildReportId derives a report id from the board id and generation date.
func BuildReportId(boardId string, generatedAt time.Time) string {
	return fmt.Sprintf("%s-%s", boardId, generatedAt.Format("20060102"))
}

// GetReportRecords returns all reports, newest first.
func GetReportRecords(ctx context.Context) ([]*ReportRecord, error) {
	db := config.GetDB()
	var reports []*ReportRecord
	if err := db.WithContext(ctx).Order("generated_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// GetLatestReportForBoard surfaces only the newest report of a board.
func GetLatestReportForBoard(ctx context.Context, boardId string) (*ReportRecord, error) {
	db := config.GetDB()
	var report ReportRecord
	err := db.WithContext(ctx).
		Where("board_id = ?", boardId).
		Order("generated_at DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("report not found")
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// SaveReportRecords persists a reconciled report collection. Rows are matched
// by report id (last-write-wins on re-import).
func SaveReportRecords(ctx context.Context, reports []*ReportRecord) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, report := range reports {
			var existing ReportRecord
			err := tx.Where("report_id = ?", report.ReportId).First(&existing).Error
			if err == nil {
				report.ID = existing.ID
				report.CreatedAt = existing.CreatedAt
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Save(report).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
