package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// OpenUpperBound 开放上界哨兵值（"5<" 这类只有下界的区间）
const OpenUpperBound = 999999

// WeightRange 重量段解析结果
type WeightRange struct {
	From float64
	To   float64
	Raw  string
}

var (
	// 0<W<=0.3 / 0.5<重量<=1
	weightIneqRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*<[^<>]*?<=?\s*(\d+(?:\.\d+)?)`)
	// [0.5,1.0) / (1,2]
	weightBracketRe = regexp.MustCompile(`[\[(]\s*(\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)\s*[\])]`)
	// 0.5-1.0 / 0.5~1kg
	weightDashRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-~]\s*(\d+(?:\.\d+)?)`)
	// <0.3 / <=0.3
	weightOpenLowRe = regexp.MustCompile(`^\s*<=?\s*(\d+(?:\.\d+)?)`)
	// 5< / 5<= / >5
	weightOpenHighRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*<=?\s*$`)
	weightOpenHighRe2 = regexp.MustCompile(`^\s*>=?\s*(\d+(?:\.\d+)?)`)

	// 比较符的 Unicode 变体统一为 ASCII
	comparatorReplacer = strings.NewReplacer("≤", "<=", "≥", ">=")
)

// ParseWeightRange 解析重量段文本，五种形态按序尝试：
// 不等式、区间括号、横线区间、只有上界、只有下界
// 全部不匹配返回 nil，上下界颠倒时交换
func ParseWeightRange(raw string) *WeightRange {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	norm := comparatorReplacer.Replace(Normalize(trimmed))

	if m := weightIneqRe.FindStringSubmatch(norm); m != nil {
		return newWeightRange(m[1], m[2], raw)
	}
	if m := weightBracketRe.FindStringSubmatch(norm); m != nil {
		return newWeightRange(m[1], m[2], raw)
	}
	if m := weightDashRe.FindStringSubmatch(norm); m != nil {
		return newWeightRange(m[1], m[2], raw)
	}
	if m := weightOpenLowRe.FindStringSubmatch(norm); m != nil {
		return newWeightRange("0", m[1], raw)
	}
	if m := weightOpenHighRe.FindStringSubmatch(norm); m != nil {
		return newWeightRange(m[1], strconv.Itoa(OpenUpperBound), raw)
	}
	if m := weightOpenHighRe2.FindStringSubmatch(norm); m != nil {
		return newWeightRange(m[1], strconv.Itoa(OpenUpperBound), raw)
	}

	return nil
}

func newWeightRange(fromStr, toStr, raw string) *WeightRange {
	from, err1 := strconv.ParseFloat(fromStr, 64)
	to, err2 := strconv.ParseFloat(toStr, 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	if from < 0 || to < 0 {
		return nil
	}
	if to < from {
		from, to = to, from
	}
	return &WeightRange{
		From: Round3(from),
		To:   Round3(to),
		Raw:  raw,
	}
}

// FindWeightRanges 在任意文本中查找横线区间/不等式形态的重量段子串
// 用于结构签名扫描，可能一格内含多个重量段
func FindWeightRanges(text string) []WeightRange {
	norm := comparatorReplacer.Replace(Normalize(text))
	if norm == "" {
		return nil
	}

	var out []WeightRange
	for _, m := range weightIneqRe.FindAllStringSubmatch(norm, -1) {
		if wr := newWeightRange(m[1], m[2], m[0]); wr != nil {
			out = append(out, *wr)
		}
	}
	// 不等式已命中的文本不再按横线区间重复解析
	remainder := weightIneqRe.ReplaceAllString(norm, " ")
	for _, m := range weightDashRe.FindAllStringSubmatch(remainder, -1) {
		if wr := newWeightRange(m[1], m[2], m[0]); wr != nil {
			out = append(out, *wr)
		}
	}
	return out
}

// Round3 四舍五入到 3 位小数
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ParseNumber 防御式数值解析：剔除数字/小数点/负号以外的字符后再解析
// 解析失败返回 nil，从不 panic
func ParseNumber(raw string) *float64 {
	norm := Normalize(raw)
	if norm == "" {
		return nil
	}

	var b strings.Builder
	for _, r := range norm {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return &v
}
