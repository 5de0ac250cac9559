package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/wuxmax123/express-ledger/internal/classify"
	"github.com/wuxmax123/express-ledger/internal/extract"
	"github.com/wuxmax123/express-ledger/internal/grid"
	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/signature"
	"github.com/wuxmax123/express-ledger/internal/store"
)

// Coordinator 导入协调器
// sheet 之间相互独立，单个 sheet 失败不终止整个导入
type Coordinator struct {
	store      *store.Store
	classifier *classify.Classifier
	extractor  *extract.Extractor
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, opts classify.Options, defaultCurrency string) *Coordinator {
	return &Coordinator{
		store:      st,
		classifier: classify.NewClassifier(opts),
		extractor:  extract.NewExtractor(defaultCurrency),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string
	Filename string // 展示用原始文件名，为空时取 FilePath 的 base
	DryRun   bool   // 只检测和提取，不写库
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/sheet_start/sheet_done/warning/error/done
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// importContext 单次导入的上下文
type importContext struct {
	file         *excelize.File
	opts         ImportOptions
	startTime    time.Time
	report       *model.ImportReport
	progressChan chan ProgressEvent
	directory    *classify.Directory
	versionCode  string
}

// Import 执行导入，返回进度通道
// 通道在导入结束后关闭，最后一个事件为 done 或 error
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()

	filename := opts.Filename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始导入运价表文件",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	})

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("打开文件失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}
	defer file.Close()

	ctx := &importContext{
		file:         file,
		opts:         opts,
		startTime:    startTime,
		progressChan: progressChan,
		versionCode:  startTime.Format("V20060102-150405"),
		report: &model.ImportReport{
			JobID:    uuid.NewString(),
			Filename: filename,
			Sheets:   []model.SheetRecord{},
		},
	}

	var logID int64
	if !opts.DryRun {
		var fileSize int64
		if info, err := os.Stat(opts.FilePath); err == nil {
			fileSize = info.Size()
		}
		logID, err = c.store.CreateImportLog(ctx.report.JobID, filename, fileSize)
		if err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("创建导入日志失败: %v", err),
				Timestamp: time.Now(),
			})
		}
	}

	sheetList := file.GetSheetList()
	ctx.report.TotalSheets = len(sheetList)

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("发现 %d 个 Sheet", len(sheetList)),
		Data:      map[string]interface{}{"total_sheets": len(sheetList)},
		Timestamp: time.Now(),
	})

	// 先扫目录表，后续 sheet 检测用它兜底
	ctx.directory = c.scanDirectory(ctx, sheetList)

	for _, sheetName := range sheetList {
		c.processSheet(ctx, sheetName)
	}

	ctx.report.Duration = time.Since(startTime)

	if !opts.DryRun && logID > 0 {
		if err := c.store.CompleteImportLog(logID, ctx.report, "completed", ""); err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("更新导入日志失败: %v", err),
				Timestamp: time.Now(),
			})
		}
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      ctx.report,
		Timestamp: time.Now(),
	})
}

// scanDirectory 扫描目录表
// 同一工作簿可能有多个目录页，取第一个解析出条目的
func (c *Coordinator) scanDirectory(ctx *importContext, sheetList []string) *classify.Directory {
	for _, sheetName := range sheetList {
		if !classify.IsDirectorySheet(sheetName) {
			continue
		}
		g, err := c.sheetGrid(ctx, sheetName)
		if err != nil {
			continue
		}
		dir := classify.ParseDirectory(g)
		if dir.Len() > 0 {
			c.sendProgress(ctx.progressChan, ProgressEvent{
				Type:      "info",
				Message:   fmt.Sprintf("目录表 \"%s\" 解析出 %d 个渠道", sheetName, dir.Len()),
				Timestamp: time.Now(),
			})
			return dir
		}
	}
	return nil
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ctx *importContext, sheetName string) {
	sheetStartTime := time.Now()

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:      "sheet_start",
		Message:   fmt.Sprintf("正在处理 Sheet: %s", sheetName),
		Data:      map[string]string{"sheet_name": sheetName},
		Timestamp: time.Now(),
	})

	g, err := c.sheetGrid(ctx, sheetName)
	if err != nil {
		c.recordSheetResult(ctx, model.SheetRecord{
			SheetName: sheetName,
			Verdict:   model.VerdictSkipped,
			Errors:    []string{fmt.Sprintf("读取 Sheet 失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	detection := c.classifier.Classify(sheetName, g, ctx.directory)

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type: "info",
		Message: fmt.Sprintf("Sheet \"%s\" 判定为: %s (置信度: %d)",
			sheetName, detection.Verdict, detection.Confidence),
		Data: map[string]interface{}{
			"sheet_name": sheetName,
			"verdict":    string(detection.Verdict),
			"confidence": detection.Confidence,
		},
		Timestamp: time.Now(),
	})

	record := model.SheetRecord{
		SheetName:   sheetName,
		Verdict:     detection.Verdict,
		ChannelCode: detection.ChannelCode,
		Detection:   detection,
	}

	switch detection.Verdict {
	case model.VerdictRate:
		c.processRateSheet(ctx, g, &record)
	case model.VerdictUncertain:
		c.previewUncertainSheet(g, &record)
	}

	record.Duration = time.Since(sheetStartTime)
	c.recordSheetResult(ctx, record)

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type: "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 处理完成: %d 条运价", sheetName, len(record.Items)),
		Data: map[string]interface{}{
			"sheet_name": sheetName,
			"items":      len(record.Items),
		},
		Timestamp: time.Now(),
	})
}

// processRateSheet 提取运价明细、对比结构签名并入库
func (c *Coordinator) processRateSheet(ctx *importContext, g *grid.Grid, record *model.SheetRecord) {
	result := c.extractor.Extract(g)
	if result.HeaderRow < 0 {
		// 识别为运价表但定位不到表头，降级为待人工确认
		record.Verdict = model.VerdictUncertain
		record.Detection.Verdict = model.VerdictUncertain
		record.Errors = append(record.Errors, "未定位到表头行，需人工确认列映射")
		return
	}

	record.Items = result.Items
	record.Notes = result.Notes

	if record.ChannelCode == "" {
		record.Errors = append(record.Errors, "未识别渠道代码，运价未入库")
		return
	}

	c.compareStructure(ctx, g, record)

	if ctx.opts.DryRun {
		return
	}
	c.persistRateSheet(ctx, g, record)
}

// previewUncertainSheet 对待确认 Sheet 做试提取，仅进报告不入库
func (c *Coordinator) previewUncertainSheet(g *grid.Grid, record *model.SheetRecord) {
	result := c.extractor.Extract(g)
	if result.HeaderRow < 0 {
		return
	}
	record.Items = result.Items
	record.Notes = result.Notes
}

// compareStructure 与渠道历史签名基线对比重量段结构
func (c *Coordinator) compareStructure(ctx *importContext, g *grid.Grid, record *model.SheetRecord) {
	hasHistory, err := c.store.HasHistory(record.ChannelCode)
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("查询渠道历史失败: %v", err))
		return
	}
	if !hasHistory {
		// 新渠道没有对比对象，静默记录签名即可，不输出变化级别
		return
	}

	curr := signature.Compute(g)
	prev, err := c.store.GetSignature(record.ChannelCode)
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("查询签名基线失败: %v", err))
		return
	}

	var change model.StructureChange
	if prev == nil {
		change = signature.NoBaseline()
	} else {
		change = signature.Compare(*prev, curr)
	}
	record.StructureChangeLevel = change.Level
	record.StructureMessage = change.Message

	if change.Level == model.ChangeMajor {
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type: "warning",
			Message: fmt.Sprintf("渠道 %s 重量段结构发生重大变化: %s",
				record.ChannelCode, change.Message),
			Timestamp: time.Now(),
		})
	}
}

// persistRateSheet 写入渠道、新版本运价和签名基线
func (c *Coordinator) persistRateSheet(ctx *importContext, g *grid.Grid, record *model.SheetRecord) {
	if err := c.store.UpsertChannel(record.ChannelCode, record.SheetName); err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("写入渠道失败: %v", err))
		return
	}

	version := model.RateSheetVersion{
		ID:            uuid.NewString(),
		ChannelCode:   record.ChannelCode,
		VersionCode:   ctx.versionCode,
		FileName:      ctx.report.Filename,
		EffectiveDate: record.Detection.EffectiveDate,
	}
	if err := c.store.SaveRateSheet(version, record.Items); err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("写入运价失败: %v", err))
		return
	}

	if err := c.store.PutSignature(record.ChannelCode, signature.Compute(g)); err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("写入签名基线失败: %v", err))
	}
}

// sheetGrid 读取 sheet 并构建单元格网格
func (c *Coordinator) sheetGrid(ctx *importContext, sheetName string) (*grid.Grid, error) {
	rows, err := ctx.file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	g := grid.FromStrings(rows)
	g.ForwardFill(c.classifier.Options().ForwardFillRows)
	return g, nil
}

// recordSheetResult 记录 Sheet 处理结果
func (c *Coordinator) recordSheetResult(ctx *importContext, record model.SheetRecord) {
	ctx.report.Sheets = append(ctx.report.Sheets, record)

	switch record.Verdict {
	case model.VerdictRate:
		ctx.report.RateSheets++
	case model.VerdictUncertain:
		ctx.report.UncertainSheets++
	case model.VerdictSkipped:
		ctx.report.SkippedSheets++
	}
	ctx.report.TotalItems += len(record.Items)
}

// sendProgress 发送进度事件，通道满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
