package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wuxmax123/express-ledger/internal/model"
)

// Channel 渠道记录
type Channel struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	HasRules  bool   `json:"hasRules"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UpsertChannel 创建或更新渠道，名称为空时保留原名
func (s *Store) UpsertChannel(code, name string) error {
	_, err := s.db.Exec(`
		INSERT INTO channels (code, name) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE channels.name END,
			updated_at = CURRENT_TIMESTAMP
	`, code, name)
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

// ListChannels 列出全部渠道
func (s *Store) ListChannels() ([]Channel, error) {
	rows, err := s.db.Query(`
		SELECT c.code, c.name, c.created_at, c.updated_at,
			EXISTS(SELECT 1 FROM rule_sets r WHERE r.channel_code = c.code)
		FROM channels c ORDER BY c.code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.HasRules); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// GetChannel 获取单个渠道，不存在时返回 nil
func (s *Store) GetChannel(code string) (*Channel, error) {
	var c Channel
	err := s.db.QueryRow(`
		SELECT code, name, created_at, updated_at,
			EXISTS(SELECT 1 FROM rule_sets r WHERE r.channel_code = channels.code)
		FROM channels WHERE code = ?
	`, code).Scan(&c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.HasRules)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &c, nil
}

// GetRuleSet 获取渠道计费规则集，未配置时返回 nil
func (s *Store) GetRuleSet(channelCode string) (*model.ChannelRuleSet, error) {
	var rulesJSON string
	err := s.db.QueryRow("SELECT rules_json FROM rule_sets WHERE channel_code = ?",
		channelCode).Scan(&rulesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule set: %w", err)
	}

	var rs model.ChannelRuleSet
	if err := json.Unmarshal([]byte(rulesJSON), &rs); err != nil {
		return nil, fmt.Errorf("failed to decode rule set: %w", err)
	}
	return &rs, nil
}

// PutRuleSet 写入渠道计费规则集，整体替换
func (s *Store) PutRuleSet(channelCode string, rs model.ChannelRuleSet) error {
	if err := rs.Validate(); err != nil {
		return err
	}

	rulesJSON, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("failed to encode rule set: %w", err)
	}

	if err := s.UpsertChannel(channelCode, ""); err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO rule_sets (channel_code, rules_json) VALUES (?, ?)
		ON CONFLICT(channel_code) DO UPDATE SET
			rules_json = excluded.rules_json,
			updated_at = CURRENT_TIMESTAMP
	`, channelCode, string(rulesJSON))
	if err != nil {
		return fmt.Errorf("failed to put rule set: %w", err)
	}
	return nil
}
