package classify

import (
	"fmt"

	"github.com/wuxmax123/express-ledger/internal/grid"
	"github.com/wuxmax123/express-ledger/internal/model"
)

// Options 分类器阈值参数
// 默认值来自线上运价文件的经验值，可通过配置覆盖
type Options struct {
	HeaderScanRows   int // 表头代码信号扫描行数
	HeaderScanCols   int // 表头代码信号扫描列数
	ColumnScanRows   int // 列名信号扫描行数
	MinColumnMatches int // 列名信号最少命中字段数
	ForwardFillRows  int // 合并单元格补偿填充行数
}

// DefaultOptions 默认阈值
func DefaultOptions() Options {
	return Options{
		HeaderScanRows:   15,
		HeaderScanCols:   10,
		ColumnScanRows:   10,
		MinColumnMatches: 3,
		ForwardFillRows:  5,
	}
}

// sheetContext 单个 sheet 的检测上下文
type sheetContext struct {
	name string
	grid *grid.Grid
	opts Options
}

// detector 具名检测策略
// 返回 nil 表示无结论，交给下一个策略；authoritative 表示结论可终止折叠
type detector struct {
	name string
	run  func(*sheetContext) (result *model.DetectionResult, authoritative bool)
}

// Classifier 三信号工作表分类器
// 按序折叠具名检测策略，在第一个权威结论处停止
type Classifier struct {
	opts      Options
	detectors []detector
}

// NewClassifier 创建分类器
func NewClassifier(opts Options) *Classifier {
	c := &Classifier{opts: opts}
	c.detectors = []detector{
		{name: "name_blacklist", run: detectNameBlacklist},
		{name: "name_whitelist", run: detectNameWhitelist},
		{name: "name_pure_code", run: detectNamePureCode},
		{name: "header_code", run: detectHeaderCode},
		{name: "column_header", run: detectColumnHeader},
	}
	return c
}

// Options 返回分类器当前阈值参数
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify 对单个 sheet 给出检测判定
// 目录交叉引用兜底：名称信号/表头信号都没有产出渠道代码时，
// 用目录表的 产品名→渠道代码 映射升级判定
func (c *Classifier) Classify(sheetName string, g *grid.Grid, dir *Directory) model.DetectionResult {
	ctx := &sheetContext{name: sheetName, grid: g, opts: c.opts}

	var pending *model.DetectionResult
	for _, d := range c.detectors {
		result, authoritative := d.run(ctx)
		if result == nil {
			continue
		}
		result.SheetName = sheetName
		if authoritative {
			// 黑名单命中不做目录兜底
			if d.name == "name_blacklist" {
				return *result
			}
			return c.directoryFallback(*result, dir)
		}
		pending = result
	}

	if pending != nil {
		return c.directoryFallback(*pending, dir)
	}

	skipped := model.DetectionResult{
		SheetName:  sheetName,
		Verdict:    model.VerdictSkipped,
		Score:      0,
		Confidence: 0,
	}
	skipped.AddReason("未找到渠道/运输代码")
	return c.directoryFallback(skipped, dir)
}

// directoryFallback 目录交叉引用兜底
func (c *Classifier) directoryFallback(result model.DetectionResult, dir *Directory) model.DetectionResult {
	if result.ChannelCode != "" || dir == nil {
		return result
	}

	code, matchKind, ok := dir.Lookup(result.SheetName)
	if !ok {
		return result
	}

	result.Verdict = model.VerdictRate
	result.Score = 100
	if result.Confidence < 90 {
		result.Confidence = 90
	}
	result.ChannelCode = code
	result.AddReason(fmt.Sprintf("目录表%s命中: %s", matchKind, code))
	return result
}
