package model

import "time"

// SheetRecord 单个 sheet 的处理产物
type SheetRecord struct {
	SheetName            string               `json:"sheetName"`
	Verdict              SheetVerdict         `json:"verdict"`
	ChannelCode          string               `json:"channelCode,omitempty"`
	Detection            DetectionResult      `json:"detection"`
	StructureChangeLevel StructureChangeLevel `json:"structureChangeLevel,omitempty"`
	StructureMessage     string               `json:"structureMessage,omitempty"`
	Items                []RateItem           `json:"items,omitempty"`
	Notes                string               `json:"notes,omitempty"`
	Duration             time.Duration        `json:"duration"`
	Errors               []string             `json:"errors,omitempty"`
}

// ImportReport 整个工作簿的导入报告
type ImportReport struct {
	JobID           string        `json:"jobId"`
	Filename        string        `json:"filename"`
	TotalSheets     int           `json:"totalSheets"`
	RateSheets      int           `json:"rateSheets"`
	UncertainSheets int           `json:"uncertainSheets"`
	SkippedSheets   int           `json:"skippedSheets"`
	TotalItems      int           `json:"totalItems"`
	Sheets          []SheetRecord `json:"sheets"`
	Duration        time.Duration `json:"duration"`
}

// RateSheetVersion 渠道运价表版本记录
type RateSheetVersion struct {
	ID            string    `json:"id"`
	ChannelCode   string    `json:"channelCode"`
	VersionCode   string    `json:"versionCode"`
	FileName      string    `json:"fileName"`
	EffectiveDate string    `json:"effectiveDate,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RateDiff 相邻两个版本之间同一价格线的差异
type RateDiff struct {
	Country    string  `json:"country"`
	Zone       string  `json:"zone,omitempty"`
	WeightFrom float64 `json:"weightFrom"`
	WeightTo   float64 `json:"weightTo"`
	OldPrice   float64 `json:"oldPrice"`
	NewPrice   float64 `json:"newPrice"`
	Delta      float64 `json:"delta"`
	DeltaPct   float64 `json:"deltaPct"`
}
