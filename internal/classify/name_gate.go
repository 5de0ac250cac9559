package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

// sheet 名黑名单：非运价内容的工作表
var nameBlacklist = []string{
	"目录", "索引", "index",
	"附加费", "偏远", "燃油", "旺季",
	"汇总", "说明", "备注", "须知", "注意事项",
	"surcharge", "remote", "fuel", "appendix", "notes",
}

// 供应商关键词 + 产品类型关键词，同时命中视为运价表
var vendorKeywords = []string{
	"云途", "燕文", "万邑通", "递四方", "4px", "华翰", "中外运", "顺友",
	"yunexpress", "yanwen", "winit", "sfc",
}

var productKeywords = []string{
	"挂号", "平邮", "专线", "小包", "大货", "标快", "特快", "经济", "普货", "带电",
}

// sheet 名本身就是渠道代码的形态
var pureCodeRe = regexp.MustCompile(`^[A-Z]{2,}[A-Z0-9]+$`)

// detectNameBlacklist 名称黑名单：附加费/目录/偏远等辅助表直接跳过
func detectNameBlacklist(ctx *sheetContext) (*model.DetectionResult, bool) {
	norm := strings.ToLower(normalize.Normalize(ctx.name))
	for _, kw := range nameBlacklist {
		if strings.Contains(norm, kw) {
			result := &model.DetectionResult{
				Verdict:    model.VerdictSkipped,
				Score:      0,
				Confidence: 0,
			}
			result.AddReason(fmt.Sprintf("sheet 名命中黑名单关键词 %q", kw))
			return result, true
		}
	}
	return nil, false
}

// detectNameWhitelist 供应商白名单：厂商关键词 + 产品关键词同时出现
// 渠道代码不从该信号提取，留给表头/列名信号或目录兜底
func detectNameWhitelist(ctx *sheetContext) (*model.DetectionResult, bool) {
	norm := strings.ToLower(normalize.Normalize(ctx.name))

	vendorHit := ""
	for _, kw := range vendorKeywords {
		if strings.Contains(norm, kw) {
			vendorHit = kw
			break
		}
	}
	if vendorHit == "" {
		return nil, false
	}

	for _, kw := range productKeywords {
		if strings.Contains(norm, kw) {
			result := &model.DetectionResult{
				Verdict:    model.VerdictRate,
				Score:      100,
				Confidence: 100,
			}
			result.AddReason(fmt.Sprintf("sheet 名命中供应商白名单: %s + %s", vendorHit, kw))
			return result, true
		}
	}
	return nil, false
}

// detectNamePureCode sheet 名本身是渠道代码（如 "YE123US"）
func detectNamePureCode(ctx *sheetContext) (*model.DetectionResult, bool) {
	name := normalize.Normalize(ctx.name)
	if len(name) < 4 || !pureCodeRe.MatchString(name) {
		return nil, false
	}

	result := &model.DetectionResult{
		Verdict:     model.VerdictRate,
		Score:       100,
		Confidence:  95,
		ChannelCode: name,
	}
	result.AddReason("sheet 名即渠道代码")
	return result, true
}
