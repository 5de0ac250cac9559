package extract

import (
	"strings"

	"github.com/wuxmax123/express-ledger/internal/classify"
	"github.com/wuxmax123/express-ledger/internal/grid"
	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

const (
	headerScanRows = 8   // 表头行搜索范围
	maxDataRows    = 150 // 表头后最多读取的数据行数
	minFieldCount  = 3   // 表头行最少命中字段数
)

// Result 提取产物：归一化运价行 + 表格下方的备注文本
type Result struct {
	Items     []model.RateItem
	Notes     string
	HeaderRow int // -1 表示未找到表头
	Mapping   map[classify.FieldKey]int
}

// Extractor 运价表提取器
type Extractor struct {
	defaultCurrency string
}

// NewExtractor 创建提取器
func NewExtractor(defaultCurrency string) *Extractor {
	if defaultCurrency == "" {
		defaultCurrency = "RMB"
	}
	return &Extractor{defaultCurrency: defaultCurrency}
}

// Extract 从已判定为运价表的 sheet 中提取归一化运价行
// 表头行映射不足 3 个字段时放弃提取而不是瞎猜
func (e *Extractor) Extract(g *grid.Grid) Result {
	headerRow, mapping := locateHeader(g)
	if headerRow < 0 {
		return Result{HeaderRow: -1}
	}

	result := Result{HeaderRow: headerRow, Mapping: mapping}
	seen := make(map[string]struct{})
	lastAccepted := headerRow

	end := headerRow + 1 + maxDataRows
	if end > g.RowCount() {
		end = g.RowCount()
	}

	for row := headerRow + 1; row < end; row++ {
		if g.RowIsEmpty(row) {
			continue
		}
		if isRepeatedHeader(g.RowText(row)) {
			continue
		}

		item, ok := e.parseRow(g, row, mapping)
		if !ok {
			continue
		}

		key := item.DedupeKey()
		if _, dup := seen[key]; dup {
			// 同一价格线后出现的重复行静默丢弃
			continue
		}
		seen[key] = struct{}{}
		result.Items = append(result.Items, item)
		lastAccepted = row
	}

	result.Notes = collectNotes(g, lastAccepted+1)
	return result
}

// locateHeader 在前几行中找别名命中数最多的行作为表头
func locateHeader(g *grid.Grid) (int, map[classify.FieldKey]int) {
	bestRow := -1
	var bestMapping map[classify.FieldKey]int

	maxRow := headerScanRows
	if maxRow > g.RowCount() {
		maxRow = g.RowCount()
	}
	for row := 0; row < maxRow; row++ {
		mapping := classify.MapColumns(g.RowText(row))
		if len(mapping) > len(bestMapping) {
			bestMapping = mapping
			bestRow = row
		}
	}

	if len(bestMapping) < minFieldCount {
		return -1, nil
	}
	return bestRow, bestMapping
}

// isRepeatedHeader 数据区中再次出现的表头行
func isRepeatedHeader(rowText []string) bool {
	return len(classify.MapColumns(rowText)) >= minFieldCount
}

// parseRow 解析单行数据，行级校验不通过返回 false
// 单格解析失败视为字段缺失，不中断整行
func (e *Extractor) parseRow(g *grid.Grid, row int, mapping map[classify.FieldKey]int) (model.RateItem, bool) {
	item := model.RateItem{Currency: e.defaultCurrency}

	countryRaw := cellText(g, row, mapping, classify.FieldCountry)
	if countryRaw != "" {
		c := normalize.NormalizeCountry(countryRaw)
		item.Country = c.Normalized
		item.CountryRaw = countryRaw
	}

	zoneRaw := cellText(g, row, mapping, classify.FieldZone)
	if zoneRaw != "" {
		z := normalize.NormalizeZone(zoneRaw)
		item.Zone = z.Normalized
		item.ZoneRaw = zoneRaw
	}

	etaRaw := cellText(g, row, mapping, classify.FieldETA)
	if etaRaw != "" {
		eta := normalize.ParseETA(etaRaw)
		item.ETAText = etaRaw
		item.ETAMinDays = eta.MinDays
	}

	weightParsed := e.parseWeight(g, row, mapping, &item)

	if raw := cellText(g, row, mapping, classify.FieldMinChargeable); raw != "" {
		item.MinChargeableWeight = normalize.ParseNumber(raw)
	}
	if raw := cellText(g, row, mapping, classify.FieldPrice); raw != "" {
		item.Price = normalize.ParseNumber(raw)
	}
	if raw := cellText(g, row, mapping, classify.FieldRegisterFee); raw != "" {
		item.RegisterFee = normalize.ParseNumber(raw)
	}
	if raw := cellText(g, row, mapping, classify.FieldCurrency); raw != "" {
		item.Currency = strings.ToUpper(normalize.Normalize(raw))
	}

	if !isValidRateRow(item, weightParsed) {
		return model.RateItem{}, false
	}
	return item, true
}

// parseWeight 解析重量段：优先重量段列，其次起重/止重两列
func (e *Extractor) parseWeight(g *grid.Grid, row int, mapping map[classify.FieldKey]int, item *model.RateItem) bool {
	if raw := cellText(g, row, mapping, classify.FieldWeightRange); raw != "" {
		item.WeightRaw = raw
		if wr := normalize.ParseWeightRange(raw); wr != nil {
			item.WeightFrom = wr.From
			item.WeightTo = wr.To
			return true
		}
		return false
	}

	fromRaw := cellText(g, row, mapping, classify.FieldWeightFrom)
	toRaw := cellText(g, row, mapping, classify.FieldWeightTo)
	if fromRaw == "" && toRaw == "" {
		return false
	}

	item.WeightRaw = strings.TrimSpace(fromRaw + "-" + toRaw)
	from := normalize.ParseNumber(fromRaw)
	to := normalize.ParseNumber(toRaw)
	if from == nil && to == nil {
		return false
	}
	if from != nil {
		item.WeightFrom = normalize.Round3(*from)
	}
	if to != nil {
		item.WeightTo = normalize.Round3(*to)
	} else {
		item.WeightTo = normalize.OpenUpperBound
	}
	if item.WeightTo < item.WeightFrom {
		item.WeightFrom, item.WeightTo = item.WeightTo, item.WeightFrom
	}
	return true
}

// isValidRateRow 行级校验：可识别国家、可解析重量、正价格三者居其一
func isValidRateRow(item model.RateItem, weightParsed bool) bool {
	if item.CountryRaw != "" && normalize.IsKnownCountry(item.CountryRaw) {
		return true
	}
	if weightParsed {
		return true
	}
	if item.Price != nil && *item.Price > 0 {
		return true
	}
	return false
}

// collectNotes 收集最后一条数据行之后的自由文本备注
// 跳过空行和重复表头行，行内单元格以空格拼接，行间以换行拼接
func collectNotes(g *grid.Grid, fromRow int) string {
	var lines []string
	for row := fromRow; row < g.RowCount(); row++ {
		if g.RowIsEmpty(row) {
			continue
		}
		text := g.RowText(row)
		if isRepeatedHeader(text) {
			continue
		}

		var parts []string
		for _, cell := range text {
			if s := strings.TrimSpace(cell); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func cellText(g *grid.Grid, row int, mapping map[classify.FieldKey]int, key classify.FieldKey) string {
	col, ok := mapping[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(g.TextAt(row, col))
}
