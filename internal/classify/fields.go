package classify

import (
	"strings"

	"github.com/wuxmax123/express-ledger/internal/normalize"
)

// FieldKey 运价表规范字段
type FieldKey string

const (
	FieldCountry       FieldKey = "country"
	FieldZone          FieldKey = "zone"
	FieldETA           FieldKey = "eta"
	FieldWeightRange   FieldKey = "weight_range"
	FieldWeightFrom    FieldKey = "weight_from"
	FieldWeightTo      FieldKey = "weight_to"
	FieldMinChargeable FieldKey = "min_chargeable_weight"
	FieldPrice         FieldKey = "price"
	FieldRegisterFee   FieldKey = "register_fee"
	FieldCurrency      FieldKey = "currency"
	FieldRounding      FieldKey = "rounding_step"
)

type fieldAlias struct {
	Key     FieldKey
	Aliases []string
}

// 列名别名字典，匹配按列表顺序进行
// 更具体的字段（最低计费重、起重/止重、挂号费）排在泛化字段（重量段、价格）之前，
// 避免 "最低计费重量" 被 "计费重量" 抢先命中
var fieldAliases = []fieldAlias{
	{FieldMinChargeable, []string{"最低计费重", "最低起重", "min chargeable", "min weight"}},
	{FieldRegisterFee, []string{"挂号费", "处理费", "操作费", "register fee", "handling fee"}},
	{FieldWeightFrom, []string{"起重", "重量从", "起始重量", "weight from"}},
	{FieldWeightTo, []string{"止重", "重量到", "截止重量", "weight to"}},
	{FieldCountry, []string{"国家", "目的地", "国家地区", "country", "destination"}},
	{FieldZone, []string{"分区", "区域", "zone"}},
	{FieldETA, []string{"时效", "参考时效", "妥投时效", "eta", "工作日"}},
	{FieldWeightRange, []string{"重量段", "重量区间", "计费重量", "重量范围", "重量(kg)", "weight range", "weight(kg)"}},
	{FieldPrice, []string{"运费", "公斤单价", "公斤价", "单价", "价格", "价钱", "price", "rate/kg", "rmb/kg"}},
	{FieldCurrency, []string{"币种", "货币", "currency"}},
	{FieldRounding, []string{"进位制", "计费进位", "进位重量", "rounding"}},
}

// MatchField 将规范化后的列名匹配到字段，未命中返回 false
func MatchField(header string) (FieldKey, bool) {
	norm := strings.ToLower(normalize.Normalize(header))
	if norm == "" {
		return "", false
	}
	for _, fa := range fieldAliases {
		for _, alias := range fa.Aliases {
			if strings.Contains(norm, alias) {
				return fa.Key, true
			}
		}
	}
	return "", false
}

// MapColumns 将一行表头映射为 字段 → 列下标
// 同一字段取最先出现的列
func MapColumns(headers []string) map[FieldKey]int {
	mapping := make(map[FieldKey]int)
	for idx, h := range headers {
		key, ok := MatchField(h)
		if !ok {
			continue
		}
		if _, exists := mapping[key]; !exists {
			mapping[key] = idx
		}
	}
	return mapping
}

// HasWeightColumn 映射中是否含任一重量字段
func HasWeightColumn(mapping map[FieldKey]int) bool {
	for _, key := range []FieldKey{FieldWeightRange, FieldWeightFrom, FieldWeightTo} {
		if _, ok := mapping[key]; ok {
			return true
		}
	}
	return false
}
