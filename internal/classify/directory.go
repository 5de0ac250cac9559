package classify

import (
	"strings"

	"github.com/wuxmax123/express-ledger/internal/grid"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

// 目录表自身的 sheet 名形态
var directoryNameKeywords = []string{"目录", "索引", "index"}

// directoryEntry 目录表中的一行：产品名 → 渠道代码
type directoryEntry struct {
	Name string // 规范化后的产品名
	Code string
}

// Directory 目录交叉引用表
// 在分类器的名称/表头信号都未产出渠道代码时作为兜底信号
type Directory struct {
	entries []directoryEntry
	exact   map[string]string
}

// IsDirectorySheet sheet 名是否为目录表
func IsDirectorySheet(sheetName string) bool {
	norm := strings.ToLower(normalize.Normalize(sheetName))
	for _, kw := range directoryNameKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// ParseDirectory 解析目录表为 产品名→渠道代码 查找表
// 逐行找 代码形态的单元格 + 同行的产品名单元格，解析不出任何行时返回空目录
func ParseDirectory(g *grid.Grid) *Directory {
	dir := &Directory{exact: make(map[string]string)}
	if g == nil {
		return dir
	}

	for row := 0; row < g.RowCount(); row++ {
		code := ""
		name := ""
		for col := 0; col < g.ColCount(row); col++ {
			text := normalize.Normalize(g.TextAt(row, col))
			if text == "" {
				continue
			}
			if code == "" && len(text) >= 4 && codeValueRe.MatchString(text) {
				code = text
				continue
			}
			// 产品名取同行第一个非代码文本格
			if name == "" && !codeValueRe.MatchString(text) {
				name = text
			}
		}
		if code == "" || name == "" {
			continue
		}

		key := directoryKey(name)
		if _, exists := dir.exact[key]; exists {
			continue
		}
		dir.exact[key] = code
		dir.entries = append(dir.entries, directoryEntry{Name: key, Code: code})
	}

	return dir
}

// Len 目录条目数
func (d *Directory) Len() int {
	return len(d.entries)
}

// Lookup 按 sheet 名查渠道代码
// 先精确匹配规范化名称，再做双向子串匹配
func (d *Directory) Lookup(sheetName string) (code, matchKind string, ok bool) {
	key := directoryKey(sheetName)
	if key == "" {
		return "", "", false
	}

	if code, found := d.exact[key]; found {
		return code, "精确", true
	}

	for _, e := range d.entries {
		if strings.Contains(key, e.Name) || strings.Contains(e.Name, key) {
			return e.Code, "模糊", true
		}
	}
	return "", "", false
}

func directoryKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(normalize.Normalize(name), " ", ""))
}
