package model

import "strconv"

// RateItem 一条归一化后的运价记录
// 同一 sheet 内以 (国家, 分区, 起重, 止重) 去重，后出现的重复行被丢弃
type RateItem struct {
	Country             string   `json:"country"`
	CountryRaw          string   `json:"countryRaw"`
	Zone                string   `json:"zone,omitempty"`
	ZoneRaw             string   `json:"zoneRaw,omitempty"`
	ETAText             string   `json:"etaText,omitempty"`
	ETAMinDays          *int     `json:"etaMinDays,omitempty"`
	WeightFrom          float64  `json:"weightFrom"`
	WeightTo            float64  `json:"weightTo"`
	WeightRaw           string   `json:"weightRaw"`
	MinChargeableWeight *float64 `json:"minChargeableWeight,omitempty"`
	Price               *float64 `json:"price,omitempty"`
	RegisterFee         *float64 `json:"registerFee,omitempty"`
	Currency            string   `json:"currency"`
}

// DedupeKey 去重键
func (r *RateItem) DedupeKey() string {
	return r.Country + "|" + r.Zone + "|" + formatBound(r.WeightFrom) + "|" + formatBound(r.WeightTo)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// WeightBracket 重量段 [lower, upper)
type WeightBracket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// StructureSignature 渠道重量段结构签名
// 对排序后的重量段列表做稳定哈希，与输入行顺序无关
type StructureSignature struct {
	Hash     string          `json:"hash"`
	Brackets []WeightBracket `json:"brackets"`
}

// StructureChangeLevel 结构变化级别
type StructureChangeLevel string

const (
	ChangeNone  StructureChangeLevel = "NONE"
	ChangeMinor StructureChangeLevel = "MINOR"
	ChangeMajor StructureChangeLevel = "MAJOR"
)

// StructureChange 结构对比结论
type StructureChange struct {
	Level   StructureChangeLevel `json:"level"`
	Message string               `json:"message"`
}
