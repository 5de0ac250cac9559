package weight

import (
	"fmt"
	"strconv"

	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/normalize"
)

// DefaultDivisor 没有任何规则命中时的兜底泡比
const DefaultDivisor = 5000

// 条件规则字段缺省值
const (
	defaultBaseDivisor    = 6000
	defaultRatioThreshold = 2
	defaultExceedsDivisor = 8000
)

// InputError 入参校验错误：区别于 "未命中规则走默认泡比"（后者是正常结果）
type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("缺少必要参数: %s", e.Field)
}

// Request 计费重计算请求
// 指针字段用于区分 "未提供" 与 0
type Request struct {
	Length       *float64 `json:"length"`
	Width        *float64 `json:"width"`
	Height       *float64 `json:"height"`
	ActualWeight *float64 `json:"actualWeight"`
}

// Evaluate 计算计费重
// 纯函数，无共享状态，可并发调用
func Evaluate(req Request, rs model.ChannelRuleSet) (model.CalculationResult, error) {
	if err := validate(req); err != nil {
		return model.CalculationResult{}, err
	}

	l, w, h := *req.Length, *req.Width, *req.Height
	actual := *req.ActualWeight

	if rs.Type == model.RuleSetConditional && len(rs.Rules) > 0 {
		return evalConditional(l, w, h, actual, rs.Rules), nil
	}

	divisor := rs.Divisor
	if divisor <= 0 {
		divisor = DefaultDivisor
	}
	return evalSimple(l, w, h, actual, divisor, ""), nil
}

func validate(req Request) error {
	// 长宽高必须为正数，实重允许为 0
	switch {
	case req.Length == nil || *req.Length <= 0:
		return &InputError{Field: "length"}
	case req.Width == nil || *req.Width <= 0:
		return &InputError{Field: "width"}
	case req.Height == nil || *req.Height <= 0:
		return &InputError{Field: "height"}
	case req.ActualWeight == nil || *req.ActualWeight < 0:
		return &InputError{Field: "actualWeight"}
	}
	return nil
}

// evalSimple 单一泡比：体积重与实重取大
func evalSimple(l, w, h, actual, divisor float64, prefix string) model.CalculationResult {
	volume := l * w * h
	volumetric := volume / divisor
	chargeable := actual
	if volumetric > chargeable {
		chargeable = volumetric
	}

	calc := prefix
	calc += fmt.Sprintf("体积重 = (%s × %s × %s) / %s = %.3fkg\n",
		num(l), num(w), num(h), num(divisor), volumetric)
	calc += fmt.Sprintf("计费重 = max(实重 %skg, 体积重 %.3fkg) = %.3fkg",
		num(actual), volumetric, chargeable)

	result := model.CalculationResult{
		ActualWeight:     actual,
		VolumetricWeight: normalize.Round3(volumetric),
		ChargeableWeight: normalize.Round3(chargeable),
		Calculation:      calc,
	}
	if prefix != "" {
		result.RuleApplied = fmt.Sprintf("默认规则 (泡比 /%s)", num(divisor))
	}
	return result
}

// evalConditional 多档条件规则：按序取第一条 实重 ≤ weightMax 的规则
func evalConditional(l, w, h, actual float64, rules []model.ConditionalRule) model.CalculationResult {
	volume := l * w * h

	for _, rule := range rules {
		if rule.WeightMax > 0 && actual > rule.WeightMax {
			continue
		}

		baseDivisor := rule.BaseDivisor
		if baseDivisor <= 0 {
			baseDivisor = defaultBaseDivisor
		}
		threshold := rule.VolumeRatioThreshold
		if threshold <= 0 {
			threshold = defaultRatioThreshold
		}

		ratio := volume / baseDivisor / actual

		calc := "条件检查:\n"
		calc += fmt.Sprintf("实重 %skg ≤ %skg ✓\n", num(actual), num(rule.WeightMax))
		calc += fmt.Sprintf("体积比率 = (%s × %s × %s) / %s / %s = %.3f\n",
			num(l), num(w), num(h), num(baseDivisor), num(actual), ratio)

		if ratio > threshold {
			exceedsDivisor := rule.ExceedsDivisor
			if exceedsDivisor <= 0 {
				exceedsDivisor = defaultExceedsDivisor
			}
			volumetric := volume / exceedsDivisor
			chargeable := actual
			if volumetric > chargeable {
				chargeable = volumetric
			}

			calc += fmt.Sprintf("体积比率 %.3f > %s ✓\n", ratio, num(threshold))
			calc += fmt.Sprintf("体积重 = %s / %s = %.3fkg\n", num(volume), num(exceedsDivisor), volumetric)
			calc += fmt.Sprintf("计费重 = max(实重 %skg, 体积重 %.3fkg) = %.3fkg", num(actual), volumetric, chargeable)

			return model.CalculationResult{
				ActualWeight:     actual,
				VolumetricWeight: normalize.Round3(volumetric),
				ChargeableWeight: normalize.Round3(chargeable),
				Calculation:      calc,
				RuleApplied:      fmt.Sprintf("使用泡比 /%s (体积比率超过阈值 %s)", num(exceedsDivisor), num(threshold)),
			}
		}

		calc += fmt.Sprintf("体积比率 %.3f ≤ %s ✓\n", ratio, num(threshold))

		if rule.NotExceeds == model.NotExceedsDivisor && rule.NotExceedsDivisorVal > 0 {
			divisor := rule.NotExceedsDivisorVal
			volumetric := volume / divisor
			chargeable := actual
			if volumetric > chargeable {
				chargeable = volumetric
			}

			calc += fmt.Sprintf("体积重 = %s / %s = %.3fkg\n", num(volume), num(divisor), volumetric)
			calc += fmt.Sprintf("计费重 = max(实重 %skg, 体积重 %.3fkg) = %.3fkg", num(actual), volumetric, chargeable)

			return model.CalculationResult{
				ActualWeight:     actual,
				VolumetricWeight: normalize.Round3(volumetric),
				ChargeableWeight: normalize.Round3(chargeable),
				Calculation:      calc,
				RuleApplied:      fmt.Sprintf("使用泡比 /%s", num(divisor)),
			}
		}

		// 未超阈值且未指定替代泡比：按实重收费
		calc += fmt.Sprintf("按实重收费 = %skg", num(actual))
		return model.CalculationResult{
			ActualWeight:     actual,
			VolumetricWeight: normalize.Round3(volume / baseDivisor),
			ChargeableWeight: normalize.Round3(actual),
			Calculation:      calc,
			RuleApplied:      fmt.Sprintf("按实重收费 (体积比率未超过阈值 %s)", num(threshold)),
		}
	}

	// 所有规则都不适用，走默认泡比并在结果中说明（属正常结果，不是错误）
	return evalSimple(l, w, h, actual, DefaultDivisor, "未匹配到条件规则，使用默认计算:\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
