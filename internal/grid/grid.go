package grid

import (
	"strconv"
	"strings"
)

// CellKind 单元格类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell 单元格，Empty/Text/Number 三态
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// IsEmpty 是否为空单元格
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String 文本形式的单元格内容
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Float 数值形式的单元格内容
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// Grid 行优先的二维单元格网格，越界访问返回空单元格
type Grid struct {
	rows [][]Cell
}

// FromStrings 从字符串矩阵构建网格
// 纯数字文本归类为 Number，空白文本归类为 Empty
func FromStrings(rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, raw := range row {
			cells[i][j] = cellFromString(raw)
		}
	}
	return &Grid{rows: cells}
}

func cellFromString(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Number: v, Text: trimmed}
	}
	return Cell{Kind: CellText, Text: trimmed}
}

// RowCount 行数
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// ColCount 指定行的列数
func (g *Grid) ColCount(row int) int {
	if row < 0 || row >= len(g.rows) {
		return 0
	}
	return len(g.rows[row])
}

// At 取单元格，越界返回空单元格
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g.rows) {
		return Cell{Kind: CellEmpty}
	}
	if col < 0 || col >= len(g.rows[row]) {
		return Cell{Kind: CellEmpty}
	}
	return g.rows[row][col]
}

// TextAt 取单元格文本，越界返回空串
func (g *Grid) TextAt(row, col int) string {
	return g.At(row, col).String()
}

// RowText 整行文本
func (g *Grid) RowText(row int) []string {
	if row < 0 || row >= len(g.rows) {
		return nil
	}
	out := make([]string, len(g.rows[row]))
	for j, c := range g.rows[row] {
		out[j] = c.String()
	}
	return out
}

// RowIsEmpty 整行是否为空
func (g *Grid) RowIsEmpty(row int) bool {
	if row < 0 || row >= len(g.rows) {
		return true
	}
	for _, c := range g.rows[row] {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// ForwardFill 对前 n 行做横向填充：空单元格继承同行左侧最近的非空值
// 用于补偿源文件中合并单元格展开后的空洞
func (g *Grid) ForwardFill(n int) {
	if n > len(g.rows) {
		n = len(g.rows)
	}
	for i := 0; i < n; i++ {
		var last Cell
		for j := range g.rows[i] {
			if g.rows[i][j].IsEmpty() {
				g.rows[i][j] = last
			} else {
				last = g.rows[i][j]
			}
		}
	}
}
