package signature

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/wuxmax123/express-ledger/internal/grid"
	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

const (
	maxScanRows = 500  // 签名扫描的最大行数
	minorShift  = 0.01 // MINOR 判定允许的最大边界漂移 (kg)
)

// Compute 计算 sheet 的重量段结构签名
// 扫描所有单元格中的重量段形态子串，按 (下界,上界) 去重后升序排序，
// 对规范序列化做 djb2 哈希；与输入行顺序无关
func Compute(g *grid.Grid) model.StructureSignature {
	seen := make(map[string]struct{})
	var brackets []model.WeightBracket

	rows := g.RowCount()
	if rows > maxScanRows {
		rows = maxScanRows
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < g.ColCount(row); col++ {
			cell := g.At(row, col)
			if cell.Kind != grid.CellText {
				continue
			}
			for _, wr := range normalize.FindWeightRanges(cell.Text) {
				b := model.WeightBracket{
					Lower: normalize.Round3(wr.From),
					Upper: normalize.Round3(wr.To),
				}
				key := serializeBracket(b)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				brackets = append(brackets, b)
			}
		}
	}

	sort.Slice(brackets, func(i, j int) bool {
		if brackets[i].Lower != brackets[j].Lower {
			return brackets[i].Lower < brackets[j].Lower
		}
		return brackets[i].Upper < brackets[j].Upper
	})

	return model.StructureSignature{
		Hash:     hashBrackets(brackets),
		Brackets: brackets,
	}
}

// FromBrackets 由既有重量段列表构建签名（去重、排序后哈希）
func FromBrackets(brackets []model.WeightBracket) model.StructureSignature {
	seen := make(map[string]struct{})
	var out []model.WeightBracket
	for _, b := range brackets {
		b.Lower = normalize.Round3(b.Lower)
		b.Upper = normalize.Round3(b.Upper)
		key := serializeBracket(b)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Lower != out[j].Lower {
			return out[i].Lower < out[j].Lower
		}
		return out[i].Upper < out[j].Upper
	})

	return model.StructureSignature{Hash: hashBrackets(out), Brackets: out}
}

// Compare 对比基线签名与当前签名的重量段结构
// NONE: 数量一致且逐位相等；MINOR: 数量差 ≤1 且重叠位边界漂移 ≤0.01；其余 MAJOR
func Compare(prev, curr model.StructureSignature) model.StructureChange {
	if prev.Hash == curr.Hash {
		return model.StructureChange{
			Level:   model.ChangeNone,
			Message: "重量段结构与上一版本一致",
		}
	}

	p, c := prev.Brackets, curr.Brackets
	lenDiff := len(c) - len(p)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}

	if lenDiff == 0 && bracketsEqual(p, c) {
		return model.StructureChange{
			Level:   model.ChangeNone,
			Message: "重量段结构与上一版本一致",
		}
	}

	if lenDiff <= 1 {
		maxShift := maxPositionalShift(p, c)
		if maxShift <= minorShift {
			return model.StructureChange{
				Level:   model.ChangeMinor,
				Message: fmt.Sprintf("重量段边界微调 (最大漂移 %.3fkg, 数量变化 %d)", maxShift, len(c)-len(p)),
			}
		}
	}

	return model.StructureChange{
		Level:   model.ChangeMajor,
		Message: fmt.Sprintf("重量段结构重大变化: %d 段 → %d 段", len(p), len(c)),
	}
}

// NoBaseline 有历史版本但本地没有基线签名时的保守结论
func NoBaseline() model.StructureChange {
	return model.StructureChange{
		Level:   model.ChangeMinor,
		Message: "渠道有历史版本但缺少基线签名，无法精确对比",
	}
}

func bracketsEqual(a, b []model.WeightBracket) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Lower != b[i].Lower || a[i].Upper != b[i].Upper {
			return false
		}
	}
	return true
}

// maxPositionalShift 重叠位置上的最大边界漂移
// 漂移量舍入到 3 位小数再参与阈值比较，避免浮点误差把 0.01 判成超限
func maxPositionalShift(a, b []model.WeightBracket) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	shift := 0.0
	for i := 0; i < n; i++ {
		if d := normalize.Round3(math.Abs(a[i].Lower - b[i].Lower)); d > shift {
			shift = d
		}
		if d := normalize.Round3(math.Abs(a[i].Upper - b[i].Upper)); d > shift {
			shift = d
		}
	}
	return shift
}

func serializeBracket(b model.WeightBracket) string {
	return strconv.FormatFloat(b.Lower, 'f', 3, 64) + "-" + strconv.FormatFloat(b.Upper, 'f', 3, 64)
}

// hashBrackets 对规范序列化做 djb2 滚动哈希，输出 36 进制短串
func hashBrackets(brackets []model.WeightBracket) string {
	parts := make([]string, len(brackets))
	for i, b := range brackets {
		parts[i] = serializeBracket(b)
	}
	serialized := strings.Join(parts, ";")

	h := uint32(5381)
	for _, ch := range []byte(serialized) {
		h = h*33 + uint32(ch)
	}
	return strconv.FormatUint(uint64(h), 36)
}
