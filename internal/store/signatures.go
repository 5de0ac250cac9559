package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wuxmax123/express-ledger/internal/model"
)

// GetSignature 获取渠道重量段结构签名基线，不存在时返回 nil
func (s *Store) GetSignature(channelCode string) (*model.StructureSignature, error) {
	var hash, bracketsJSON string
	err := s.db.QueryRow("SELECT hash, brackets_json FROM signatures WHERE channel_code = ?",
		channelCode).Scan(&hash, &bracketsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signature: %w", err)
	}

	var brackets []model.WeightBracket
	if err := json.Unmarshal([]byte(bracketsJSON), &brackets); err != nil {
		return nil, fmt.Errorf("failed to decode signature brackets: %w", err)
	}
	return &model.StructureSignature{Hash: hash, Brackets: brackets}, nil
}

// PutSignature 写入渠道签名基线，整体替换
func (s *Store) PutSignature(channelCode string, sig model.StructureSignature) error {
	bracketsJSON, err := json.Marshal(sig.Brackets)
	if err != nil {
		return fmt.Errorf("failed to encode signature brackets: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO signatures (channel_code, hash, brackets_json) VALUES (?, ?, ?)
		ON CONFLICT(channel_code) DO UPDATE SET
			hash = excluded.hash,
			brackets_json = excluded.brackets_json,
			updated_at = CURRENT_TIMESTAMP
	`, channelCode, sig.Hash, string(bracketsJSON))
	if err != nil {
		return fmt.Errorf("failed to put signature: %w", err)
	}
	return nil
}

// HasHistory 渠道是否有历史运价版本
func (s *Store) HasHistory(channelCode string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM rate_sheets WHERE channel_code = ?",
		channelCode).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count rate sheets: %w", err)
	}
	return count > 0, nil
}
