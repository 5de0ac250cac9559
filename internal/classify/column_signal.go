package classify

import (
	"fmt"

	"github.com/wuxmax123/express-ledger/internal/model"
)

// detectColumnHeader 列名信号：按行统计字段别名命中数
// 找到含 国家+重量+价格 三个关键列的表头行时给出 uncertain 判定，
// 置信度按命中字段数折算到 30-70，交由人工确认列映射
func detectColumnHeader(ctx *sheetContext) (*model.DetectionResult, bool) {
	bestRow := -1
	var bestMapping map[FieldKey]int

	maxRows := ctx.opts.ColumnScanRows
	if maxRows > ctx.grid.RowCount() {
		maxRows = ctx.grid.RowCount()
	}
	for row := 0; row < maxRows; row++ {
		mapping := MapColumns(ctx.grid.RowText(row))
		if len(mapping) > len(bestMapping) {
			bestMapping = mapping
			bestRow = row
		}
	}

	if len(bestMapping) < ctx.opts.MinColumnMatches {
		return nil, false
	}

	_, hasCountry := bestMapping[FieldCountry]
	_, hasPrice := bestMapping[FieldPrice]
	if !hasCountry || !hasPrice || !HasWeightColumn(bestMapping) {
		return nil, false
	}

	score := len(bestMapping) * 5
	if score > 30 {
		score = 30
	}
	confidence := 30 + (len(bestMapping)-ctx.opts.MinColumnMatches)*10
	if confidence > 70 {
		confidence = 70
	}

	result := &model.DetectionResult{
		Verdict:    model.VerdictUncertain,
		Score:      score,
		Confidence: confidence,
	}
	result.AddReason(fmt.Sprintf("第 %d 行命中 %d 个字段列，无渠道代码，需人工确认", bestRow+1, len(bestMapping)))
	return result, false
}
