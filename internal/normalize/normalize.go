package normalize

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// 全角 ASCII 区之外的常见中文标点 → ASCII
var separatorReplacer = strings.NewReplacer(
	"【", "[",
	"】", "]",
	"〔", "[",
	"〕", "]",
	"。", ".",
	"、", ",",
	"—", "-",
	"–", "-",
	"〜", "~",
)

// Normalize 将原始单元格文本转为规范形式
// 全角拉丁字符转半角，统一分隔符，压缩空白，去首尾空格
// 对任意输入都是全函数，空串原样返回
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == 0x3000: // 全角空格
			b.WriteRune(' ')
		case r >= 0xFF01 && r <= 0xFF5E: // 全角 ASCII 区
			b.WriteRune(r - 0xFEE0)
		default:
			b.WriteRune(r)
		}
	}

	s := separatorReplacer.Replace(b.String())
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
