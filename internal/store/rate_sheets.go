package store

import (
	"database/sql"
	"fmt"

	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

// SaveRateSheet 保存一个新的运价表版本及其明细
// 同渠道旧版本全部置为非 active，新版本成为当前版本
func (s *Store) SaveRateSheet(version model.RateSheetVersion, items []model.RateItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE rate_sheets SET active = 0 WHERE channel_code = ?",
		version.ChannelCode); err != nil {
		return fmt.Errorf("failed to deactivate old versions: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO rate_sheets (id, channel_code, version_code, file_name, effective_date, active)
		VALUES (?, ?, ?, ?, ?, 1)
	`, version.ID, version.ChannelCode, version.VersionCode, version.FileName,
		version.EffectiveDate); err != nil {
		return fmt.Errorf("failed to insert rate sheet: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO rate_items (
			sheet_id, country, country_raw, zone, zone_raw,
			eta_text, eta_min_days,
			weight_from, weight_to, weight_raw,
			min_chargeable_weight, price, register_fee, currency
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.Exec(
			version.ID, item.Country, item.CountryRaw, item.Zone, item.ZoneRaw,
			item.ETAText, item.ETAMinDays,
			item.WeightFrom, item.WeightTo, item.WeightRaw,
			item.MinChargeableWeight, item.Price, item.RegisterFee, item.Currency,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rate item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListRateSheetVersions 列出渠道全部运价表版本，新版本在前
func (s *Store) ListRateSheetVersions(channelCode string) ([]model.RateSheetVersion, error) {
	rows, err := s.db.Query(`
		SELECT id, channel_code, version_code, file_name, effective_date, active, created_at
		FROM rate_sheets WHERE channel_code = ? ORDER BY created_at DESC, id DESC
	`, channelCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate sheets: %w", err)
	}
	defer rows.Close()

	var versions []model.RateSheetVersion
	for rows.Next() {
		var v model.RateSheetVersion
		if err := rows.Scan(&v.ID, &v.ChannelCode, &v.VersionCode, &v.FileName,
			&v.EffectiveDate, &v.Active, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rate sheet: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetActiveRateSheet 获取渠道当前 active 版本，没有时返回 nil
func (s *Store) GetActiveRateSheet(channelCode string) (*model.RateSheetVersion, error) {
	var v model.RateSheetVersion
	err := s.db.QueryRow(`
		SELECT id, channel_code, version_code, file_name, effective_date, active, created_at
		FROM rate_sheets WHERE channel_code = ? AND active = 1
	`, channelCode).Scan(&v.ID, &v.ChannelCode, &v.VersionCode, &v.FileName,
		&v.EffectiveDate, &v.Active, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active rate sheet: %w", err)
	}
	return &v, nil
}

// GetRateItems 获取版本的全部运价明细
func (s *Store) GetRateItems(sheetID string) ([]model.RateItem, error) {
	rows, err := s.db.Query(`
		SELECT country, country_raw, zone, zone_raw,
			eta_text, eta_min_days,
			weight_from, weight_to, weight_raw,
			min_chargeable_weight, price, register_fee, currency
		FROM rate_items WHERE sheet_id = ? ORDER BY id
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate items: %w", err)
	}
	defer rows.Close()

	var items []model.RateItem
	for rows.Next() {
		var item model.RateItem
		if err := rows.Scan(
			&item.Country, &item.CountryRaw, &item.Zone, &item.ZoneRaw,
			&item.ETAText, &item.ETAMinDays,
			&item.WeightFrom, &item.WeightTo, &item.WeightRaw,
			&item.MinChargeableWeight, &item.Price, &item.RegisterFee, &item.Currency,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rate item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DiffRateSheets 对比两个版本中同一价格线（国家+分区+重量段）的价格差异
// 只输出两边都有价格的行，新增/删除的价格线不在其中
func (s *Store) DiffRateSheets(oldSheetID, newSheetID string) ([]model.RateDiff, error) {
	oldItems, err := s.GetRateItems(oldSheetID)
	if err != nil {
		return nil, err
	}
	newItems, err := s.GetRateItems(newSheetID)
	if err != nil {
		return nil, err
	}

	oldByKey := make(map[string]model.RateItem, len(oldItems))
	for _, item := range oldItems {
		oldByKey[item.DedupeKey()] = item
	}

	var diffs []model.RateDiff
	for _, item := range newItems {
		old, ok := oldByKey[item.DedupeKey()]
		if !ok || old.Price == nil || item.Price == nil {
			continue
		}
		if *old.Price == *item.Price {
			continue
		}
		diff := model.RateDiff{
			Country:    item.Country,
			Zone:       item.Zone,
			WeightFrom: item.WeightFrom,
			WeightTo:   item.WeightTo,
			OldPrice:   *old.Price,
			NewPrice:   *item.Price,
			Delta:      normalize.Round3(*item.Price - *old.Price),
		}
		if *old.Price != 0 {
			diff.DeltaPct = normalize.Round3((*item.Price - *old.Price) / *old.Price * 100)
		}
		diffs = append(diffs, diff)
	}
	return diffs, nil
}
