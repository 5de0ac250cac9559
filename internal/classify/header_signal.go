package classify

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

var (
	codeLabelRe = regexp.MustCompile(`渠道代码|运输代码|渠道编码|产品代码|(?i:channel\s*code)`)
	// 标签与代码同格："渠道代码: YE123"
	codeInlineRe = regexp.MustCompile(`(?:渠道代码|运输代码|渠道编码|产品代码|(?i:channel\s*code))\s*:?\s*([A-Z]{2}[A-Z0-9]{2,})`)
	// 独立代码格
	codeValueRe = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]+$`)

	effectiveDateLabelRe = regexp.MustCompile(`生效日期|生效时间|执行日期|(?i:effective)`)
	dateValueRe          = regexp.MustCompile(`(\d{4})[-/年.](\d{1,2})[-/月.](\d{1,2})`)
)

// 标签与代码被合并单元格拆开时的相邻格偏移：右、右二、下、右下、下二
var neighborOffsets = [][2]int{{0, 1}, {0, 2}, {1, 0}, {1, 1}, {2, 0}}

// detectHeaderCode 表头代码信号：在表头区域寻找 "渠道代码" 标签及其代码值
// 命中即为权威结论，不再评估后续信号
func detectHeaderCode(ctx *sheetContext) (*model.DetectionResult, bool) {
	code := ""
	labelCell := ""

	for row := 0; row < ctx.opts.HeaderScanRows && code == ""; row++ {
		for col := 0; col < ctx.opts.HeaderScanCols && code == ""; col++ {
			text := normalize.Normalize(ctx.grid.TextAt(row, col))
			if text == "" || !codeLabelRe.MatchString(text) {
				continue
			}
			labelCell = text

			// 同格提取
			if m := codeInlineRe.FindStringSubmatch(text); m != nil && len(m[1]) >= 4 {
				code = m[1]
				break
			}

			// 相邻格提取
			for _, off := range neighborOffsets {
				neighbor := normalize.Normalize(ctx.grid.TextAt(row+off[0], col+off[1]))
				if len(neighbor) >= 4 && codeValueRe.MatchString(neighbor) {
					code = neighbor
					break
				}
			}
		}
	}

	if code == "" {
		return nil, false
	}

	effectiveDate := findEffectiveDate(ctx)

	confidence := 80
	if len(code) >= 6 {
		confidence += 10
	}
	if effectiveDate != "" {
		confidence += 10
	}

	result := &model.DetectionResult{
		Verdict:       model.VerdictRate,
		Score:         50,
		Confidence:    confidence,
		ChannelCode:   code,
		EffectiveDate: effectiveDate,
	}
	result.AddReason(fmt.Sprintf("表头信号命中: %q → %s", labelCell, code))
	if effectiveDate != "" {
		result.AddReason(fmt.Sprintf("生效日期: %s", effectiveDate))
	}
	return result, true
}

// findEffectiveDate 在表头区域寻找生效日期
// 标签与日期可能同格，也可能在相邻格
func findEffectiveDate(ctx *sheetContext) string {
	for row := 0; row < ctx.opts.HeaderScanRows; row++ {
		for col := 0; col < ctx.opts.HeaderScanCols; col++ {
			text := normalize.Normalize(ctx.grid.TextAt(row, col))
			if text == "" || !effectiveDateLabelRe.MatchString(text) {
				continue
			}

			if d := formatDate(text); d != "" {
				return d
			}
			for _, off := range neighborOffsets {
				neighbor := normalize.Normalize(ctx.grid.TextAt(row+off[0], col+off[1]))
				if d := formatDate(neighbor); d != "" {
					return d
				}
			}
		}
	}
	return ""
}

func formatDate(text string) string {
	m := dateValueRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
