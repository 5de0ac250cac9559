package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/wuxmax123/express-ledger/internal/config"
	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	r, st, _ := newTestRouterWithUploads(t)
	return r, st
}

func newTestRouterWithUploads(t *testing.T) (*gin.Engine, *store.Store, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	uploadDir := t.TempDir()
	h := NewHandler(st, config.DefaultConfig(), uploadDir)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, st, uploadDir
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRulesEndpointRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	rs := map[string]any{
		"type": "conditional",
		"rules": []map[string]any{
			{"weightMax": 2, "baseDivisor": 6000, "volumeRatioThreshold": 2, "exceedsDivisor": 8000},
		},
	}
	w := doJSON(t, r, http.MethodPut, "/api/channels/YE123/rules", rs)
	if w.Code != http.StatusOK {
		t.Fatalf("put rules status = %d body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/channels/YE123/rules", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get rules status = %d", w.Code)
	}
	var resp RulesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Configured || resp.RuleSet == nil || resp.RuleSet.Type != model.RuleSetConditional {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestPutRulesRejectsInvalid(t *testing.T) {
	r, _ := newTestRouter(t)

	// weightMax 未递增
	rs := map[string]any{
		"type": "conditional",
		"rules": []map[string]any{
			{"weightMax": 5, "baseDivisor": 6000},
			{"weightMax": 5, "baseDivisor": 6000},
		},
	}
	w := doJSON(t, r, http.MethodPut, "/api/channels/YE123/rules", rs)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "严格递增") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetRulesUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/channels/NOPE/rules", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp RulesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Configured || resp.RuleSet != nil {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCalculateWithDivisor(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/calculate", map[string]any{
		"length": 30, "width": 20, "height": 10, "actualWeight": 1.5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var result model.CalculationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.VolumetricWeight != 1.2 || result.ChargeableWeight != 1.5 {
		t.Fatalf("result = %+v", result)
	}
}

func TestCalculateWithChannelRules(t *testing.T) {
	r, st := newTestRouter(t)

	rs := model.ChannelRuleSet{
		Type: model.RuleSetConditional,
		Rules: []model.ConditionalRule{
			{WeightMax: 5, BaseDivisor: 6000, VolumeRatioThreshold: 2, ExceedsDivisor: 8000},
		},
	}
	if err := st.PutRuleSet("YE123", rs); err != nil {
		t.Fatalf("put rule set: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/calculate", map[string]any{
		"channelCode": "YE123",
		"length":      50, "width": 40, "height": 30, "actualWeight": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var result model.CalculationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 比率 60000/6000/2 = 5 > 2 → /8000
	if result.ChargeableWeight != 7.5 {
		t.Fatalf("chargeable = %v, want 7.5", result.ChargeableWeight)
	}
}

func TestCalculateMissingInput(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/calculate", map[string]any{
		"length": 30, "width": 20, "actualWeight": 1.5,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "缺少必要参数") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestStatusAndRates(t *testing.T) {
	r, st := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/status", nil)
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Initialized {
		t.Fatal("empty store reported initialized")
	}

	w = doJSON(t, r, http.MethodGet, "/api/channels/YE123/rates", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("rates status = %d, want 404", w.Code)
	}

	price := 52.5
	if err := st.UpsertChannel("YE123", "测试渠道"); err != nil {
		t.Fatalf("upsert channel: %v", err)
	}
	if err := st.SaveRateSheet(model.RateSheetVersion{
		ID: "sheet-1", ChannelCode: "YE123", VersionCode: "V1",
	}, []model.RateItem{
		{Country: "US", WeightFrom: 0, WeightTo: 0.3, Price: &price, Currency: "RMB"},
	}); err != nil {
		t.Fatalf("save rate sheet: %v", err)
	}

	w = doJSON(t, r, http.MethodGet, "/api/channels/YE123/rates", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rates status = %d body = %s", w.Code, w.Body.String())
	}
	var ratesResp struct {
		Version model.RateSheetVersion `json:"version"`
		Items   []model.RateItem       `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ratesResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ratesResp.Items) != 1 || ratesResp.Items[0].Country != "US" {
		t.Fatalf("items = %+v", ratesResp.Items)
	}

	w = doJSON(t, r, http.MethodGet, "/api/status", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Initialized || status.ChannelCount != 1 || status.RateItemCount != 1 {
		t.Fatalf("status = %+v", status)
	}
}

func TestDiffNeedsTwoVersions(t *testing.T) {
	r, st := newTestRouter(t)

	price := 50.0
	if err := st.SaveRateSheet(model.RateSheetVersion{
		ID: "sheet-1", ChannelCode: "YE123", VersionCode: "V1",
	}, []model.RateItem{
		{Country: "US", WeightFrom: 0, WeightTo: 2, Price: &price, Currency: "RMB"},
	}); err != nil {
		t.Fatalf("save rate sheet: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/channels/YE123/diff", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Diffs []model.RateDiff `json:"diffs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Diffs) != 0 {
		t.Fatalf("diffs = %+v", resp.Diffs)
	}
}

func TestImportEndpoint(t *testing.T) {
	r, st, uploadDir := newTestRouterWithUploads(t)

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "YE123US")
	rows := [][]interface{}{
		{"国家", "分区", "重量段(KG)", "公斤价"},
		{"美国", "1区", "0-0.3", 52.5},
		{"美国", "1区", "0.3-2", 48.0},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("YE123US", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "rates.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(buf.Bytes()); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"type":"done"`) {
		t.Fatalf("SSE stream missing done event: %s", w.Body.String())
	}

	ch, err := st.GetChannel("YE123US")
	if err != nil || ch == nil {
		t.Fatalf("channel not persisted after import: %v", err)
	}

	// 原始文件应落盘到 uploads 目录
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "rates.xlsx") {
		t.Fatalf("upload dir entries = %v", entries)
	}
}

func TestSettingsOverrideDefaultDivisor(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var settings SettingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings.DefaultDivisor != 5000 || settings.DefaultCurrency != "RMB" {
		t.Fatalf("settings = %+v", settings)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/config", map[string]any{
		"updates": map[string]any{"default_divisor": 6000},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/config", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings.DefaultDivisor != 6000 {
		t.Fatalf("overridden divisor = %v, want 6000", settings.DefaultDivisor)
	}

	// 计算接口不传 divisor 时应使用覆盖后的默认泡比
	w = doJSON(t, r, http.MethodPost, "/api/calculate", map[string]any{
		"length": 30, "width": 20, "height": 10, "actualWeight": 0.5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("calculate status = %d body = %s", w.Code, w.Body.String())
	}
	var result model.CalculationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.VolumetricWeight != 1 || result.ChargeableWeight != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestSettingsRejectInvalidDivisor(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPatch, "/api/config", map[string]any{
		"updates": map[string]any{"default_divisor": -1},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "泡比必须为正数") {
		t.Fatalf("body = %s", w.Body.String())
	}
}
