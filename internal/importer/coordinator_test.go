package importer

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wuxmax123/express-ledger/internal/classify"
	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/store"
)

// buildRateWorkbook 生成测试工作簿：目录表 + 两个运价表 + 一个附加费说明
func buildRateWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "目录")
	dirRows := [][]interface{}{
		{"产品名称", "渠道代码"},
		{"云途专线小包", "YT456DE"},
		{"燕文平邮挂号", "YW001"},
	}
	for i, row := range dirRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("目录", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	writeSheet := func(name string, rows [][]interface{}) {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %s: %v", name, err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	writeSheet("YE123US", [][]interface{}{
		{"国家", "分区", "参考时效", "重量段(KG)", "公斤价", "挂号费"},
		{"美国", "1区", "5-7", "0-0.3", 52.5, 18},
		{"美国", "1区", "5-7", "0.3-2", 48.0, 18},
		{"英国", "", "3-5", "0<W≤2", 55.0, 20},
	})

	writeSheet("云途专线小包", [][]interface{}{
		{"国家", "参考时效", "重量段(KG)", "公斤价", "挂号费"},
		{"德国", "6-9", "0-0.3", 60.0, 16},
		{"法国", "6-9", "0.3-2", 58.0, 16},
	})

	writeSheet("附加费说明", [][]interface{}{
		{"偏远地区附加费自2026年起上调"},
	})

	path := filepath.Join(t.TempDir(), "rates.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func runImport(t *testing.T, c *Coordinator, path string) *model.ImportReport {
	t.Helper()

	ch := c.Import(ImportOptions{FilePath: path})

	var report *model.ImportReport
	for evt := range ch {
		if evt.Type == "error" {
			t.Fatalf("import error event: %s", evt.Message)
		}
		if evt.Type == "done" {
			report = evt.Data.(*model.ImportReport)
		}
	}
	if report == nil {
		t.Fatal("missing done report")
	}
	return report
}

func TestImportWorkbook(t *testing.T) {
	t.Parallel()

	path := buildRateWorkbook(t)

	st, err := store.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	coordinator := NewCoordinator(st, classify.DefaultOptions(), "RMB")
	report := runImport(t, coordinator, path)

	if report.TotalSheets != 4 {
		t.Fatalf("total sheets = %d, sheets = %v", report.TotalSheets, sheetVerdicts(report))
	}
	if report.RateSheets != 2 {
		t.Fatalf("rate sheets = %d, sheets = %v", report.RateSheets, sheetVerdicts(report))
	}
	if report.SkippedSheets != 2 {
		t.Fatalf("skipped sheets = %d, sheets = %v", report.SkippedSheets, sheetVerdicts(report))
	}
	if report.UncertainSheets != 0 {
		t.Fatalf("uncertain sheets = %d, sheets = %v", report.UncertainSheets, sheetVerdicts(report))
	}
	if report.TotalItems != 5 {
		t.Fatalf("total items = %d", report.TotalItems)
	}

	// 目录兜底：无代码的白名单 sheet 应拿到目录表里的渠道代码
	byName := sheetRecords(report)
	if got := byName["云途专线小包"].ChannelCode; got != "YT456DE" {
		t.Errorf("云途专线小包 channel = %q, want YT456DE", got)
	}
	if got := byName["YE123US"].ChannelCode; got != "YE123US" {
		t.Errorf("YE123US channel = %q", got)
	}

	// 入库校验
	for _, code := range []string{"YE123US", "YT456DE"} {
		ch, err := st.GetChannel(code)
		if err != nil || ch == nil {
			t.Fatalf("channel %s not persisted: %v", code, err)
		}
		sig, err := st.GetSignature(code)
		if err != nil || sig == nil {
			t.Fatalf("signature %s not persisted: %v", code, err)
		}
	}

	active, err := st.GetActiveRateSheet("YE123US")
	if err != nil || active == nil {
		t.Fatalf("active sheet: %v", err)
	}
	items, err := st.GetRateItems(active.ID)
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if items[0].Country != "US" || items[0].Price == nil || *items[0].Price != 52.5 {
		t.Errorf("items[0] = %+v", items[0])
	}

	var logCount int
	if err := st.DB().QueryRow("SELECT COUNT(*) FROM import_logs WHERE status = 'completed'").
		Scan(&logCount); err != nil {
		t.Fatalf("count import_logs: %v", err)
	}
	if logCount != 1 {
		t.Fatalf("import_logs count = %d", logCount)
	}
}

func TestReimportSameStructure(t *testing.T) {
	t.Parallel()

	path := buildRateWorkbook(t)

	st, err := store.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	coordinator := NewCoordinator(st, classify.DefaultOptions(), "RMB")

	// 首次导入静默记录签名，不应带出任何变化级别
	first := runImport(t, coordinator, path)
	if got := sheetRecords(first)["YE123US"].StructureChangeLevel; got != "" {
		t.Fatalf("first import change level = %q, want empty", got)
	}

	second := runImport(t, coordinator, path)
	rec := sheetRecords(second)["YE123US"]
	if rec.StructureChangeLevel != model.ChangeNone {
		t.Fatalf("reimport change level = %q (%s)", rec.StructureChangeLevel, rec.StructureMessage)
	}

	versions, err := st.ListRateSheetVersions("YE123US")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("len(versions) = %d, want 2", len(versions))
	}
	activeCount := 0
	for _, v := range versions {
		if v.Active {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("active versions = %d, want 1", activeCount)
	}
}

func TestImportDryRun(t *testing.T) {
	t.Parallel()

	path := buildRateWorkbook(t)

	st, err := store.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	coordinator := NewCoordinator(st, classify.DefaultOptions(), "RMB")

	ch := coordinator.Import(ImportOptions{FilePath: path, DryRun: true})
	var dryReport *model.ImportReport
	for evt := range ch {
		if evt.Type == "done" {
			dryReport = evt.Data.(*model.ImportReport)
		}
	}
	if dryReport == nil || dryReport.TotalItems != 5 {
		t.Fatalf("dry run report = %+v", dryReport)
	}

	// 不入库
	channels, err := st.ListChannels()
	if err != nil {
		t.Fatalf("list channels: %v", err)
	}
	if len(channels) != 0 {
		t.Fatalf("dry run persisted channels: %+v", channels)
	}
	var logCount int
	if err := st.DB().QueryRow("SELECT COUNT(*) FROM import_logs").Scan(&logCount); err != nil {
		t.Fatalf("count import_logs: %v", err)
	}
	if logCount != 0 {
		t.Fatalf("dry run wrote import_logs: %d", logCount)
	}
}

func sheetVerdicts(r *model.ImportReport) map[string]model.SheetVerdict {
	out := make(map[string]model.SheetVerdict, len(r.Sheets))
	for _, s := range r.Sheets {
		out[s.SheetName] = s.Verdict
	}
	return out
}

func sheetRecords(r *model.ImportReport) map[string]model.SheetRecord {
	out := make(map[string]model.SheetRecord, len(r.Sheets))
	for _, s := range r.Sheets {
		out[s.SheetName] = s
	}
	return out
}
