package model

// SheetVerdict 工作表检测判定
type SheetVerdict string

const (
	VerdictRate      SheetVerdict = "rate"      // 运价表
	VerdictUncertain SheetVerdict = "uncertain" // 需人工确认列映射
	VerdictSkipped   SheetVerdict = "skipped"   // 非运价表，跳过
)

// DetectionResult 单个 sheet 的检测结果
type DetectionResult struct {
	SheetName     string       `json:"sheetName"`
	Verdict       SheetVerdict `json:"verdict"`
	Score         int          `json:"score"`
	Confidence    int          `json:"confidence"` // 0-100
	ChannelCode   string       `json:"channelCode,omitempty"`
	EffectiveDate string       `json:"effectiveDate,omitempty"`
	Reasons       []string     `json:"reasons"`
}

// AddReason 追加一条检测依据
func (r *DetectionResult) AddReason(reason string) {
	r.Reasons = append(r.Reasons, reason)
}
