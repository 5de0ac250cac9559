package store

import (
	"fmt"

	"github.com/wuxmax123/express-ledger/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(jobID, filename string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (job_id, filename, file_size, status)
		VALUES (?, ?, ?, 'processing')
	`, jobID, filename, fileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// CompleteImportLog 完成导入日志更新
func (s *Store) CompleteImportLog(id int64, report *model.ImportReport, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			rate_sheets = ?,
			uncertain_sheets = ?,
			skipped_sheets = ?,
			total_items = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, report.TotalSheets, report.RateSheets, report.UncertainSheets,
		report.SkippedSheets, report.TotalItems, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}
