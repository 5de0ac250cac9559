package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// ETAResult 时效解析结果
type ETAResult struct {
	MinDays *int // 无法解析时为 nil
	Raw     string
}

var (
	etaRangeRe  = regexp.MustCompile(`(\d+)\s*[-~]\s*(\d+)`)
	etaSingleRe = regexp.MustCompile(`(\d+)`)
)

// ParseETA 解析时效文本
// 取区间的较小边界（"5-10工作日" → 5），单个天数直接返回，没有数字返回 nil
func ParseETA(raw string) ETAResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ETAResult{Raw: raw}
	}

	norm := Normalize(trimmed)

	if m := etaRangeRe.FindStringSubmatch(norm); m != nil {
		lo, err1 := strconv.Atoi(m[1])
		hi, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			if hi < lo {
				lo = hi
			}
			return ETAResult{MinDays: &lo, Raw: raw}
		}
	}

	if m := etaSingleRe.FindStringSubmatch(norm); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return ETAResult{MinDays: &v, Raw: raw}
		}
	}

	return ETAResult{Raw: raw}
}
