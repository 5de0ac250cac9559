package normalize

import (
	"regexp"
	"strings"
)

// ZoneResult 分区归一化结果
type ZoneResult struct {
	Normalized string
	Raw        string
}

var (
	zoneCNRe     = regexp.MustCompile(`([A-Za-z0-9]+)\s*区`)
	zoneENRe     = regexp.MustCompile(`(?i)zone[\s\-_]*([A-Za-z0-9]+)`)
	zoneTokenRe  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	zoneTrailRe  = regexp.MustCompile(`([A-Za-z0-9]+)$`)
)

// NormalizeZone 分区归一化
// "1区" → "1"，"Zone-2" → "2"，其余提取首尾字母数字片段并转大写
func NormalizeZone(raw string) ZoneResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ZoneResult{Normalized: "", Raw: raw}
	}

	norm := Normalize(trimmed)

	if m := zoneCNRe.FindStringSubmatch(norm); m != nil {
		return ZoneResult{Normalized: strings.ToUpper(m[1]), Raw: raw}
	}
	if m := zoneENRe.FindStringSubmatch(norm); m != nil {
		return ZoneResult{Normalized: strings.ToUpper(m[1]), Raw: raw}
	}
	if zoneTokenRe.MatchString(norm) {
		return ZoneResult{Normalized: strings.ToUpper(norm), Raw: raw}
	}
	if m := zoneTrailRe.FindStringSubmatch(norm); m != nil {
		return ZoneResult{Normalized: strings.ToUpper(m[1]), Raw: raw}
	}

	return ZoneResult{Normalized: strings.ToUpper(norm), Raw: raw}
}
