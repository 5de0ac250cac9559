package model

import (
	"errors"
	"fmt"
)

// RuleSetType 计费规则类型
type RuleSetType string

const (
	RuleSetSimple      RuleSetType = "simple"      // 单一泡比
	RuleSetConditional RuleSetType = "conditional" // 多档条件泡比
)

// NotExceedsBehavior 体积比率未超阈值时的处理方式
type NotExceedsBehavior string

const (
	NotExceedsActualWeight NotExceedsBehavior = "actual_weight" // 按实重收费
	NotExceedsDivisor      NotExceedsBehavior = "divisor"       // 继续用替代泡比取 max
)

// ConditionalRule 单档条件规则
// 按列表顺序求值，第一条满足 actualWeight <= WeightMax 的规则生效
type ConditionalRule struct {
	WeightMax            float64            `json:"weightMax"`
	BaseDivisor          float64            `json:"baseDivisor"`
	VolumeRatioThreshold float64            `json:"volumeRatioThreshold"`
	ExceedsDivisor       float64            `json:"exceedsDivisor"`
	NotExceeds           NotExceedsBehavior `json:"notExceeds,omitempty"`
	NotExceedsDivisorVal float64            `json:"notExceedsDivisor,omitempty"`
}

// ChannelRuleSet 渠道计费规则集
// 一个渠道同一时刻只有一套规则，编辑时整体替换，不做局部修补
type ChannelRuleSet struct {
	Type    RuleSetType       `json:"type"`
	Divisor float64           `json:"divisor,omitempty"` // simple 类型使用
	Rules   []ConditionalRule `json:"rules,omitempty"`   // conditional 类型使用
}

// Validate 校验规则集：写入前执行，拒绝畸形规则
// 条件规则要求 WeightMax 严格递增，避免排序/重叠导致的求值歧义
func (rs *ChannelRuleSet) Validate() error {
	switch rs.Type {
	case RuleSetSimple:
		if rs.Divisor <= 0 {
			return errors.New("泡比必须为正数")
		}
		return nil
	case RuleSetConditional:
		if len(rs.Rules) == 0 {
			return errors.New("条件规则列表不能为空")
		}
		prevMax := 0.0
		for i, rule := range rs.Rules {
			if rule.WeightMax <= 0 {
				return fmt.Errorf("第 %d 条规则: weightMax 必须为正数", i+1)
			}
			if rule.WeightMax <= prevMax {
				return fmt.Errorf("第 %d 条规则: weightMax 必须严格递增", i+1)
			}
			if rule.BaseDivisor < 0 || rule.ExceedsDivisor < 0 || rule.NotExceedsDivisorVal < 0 {
				return fmt.Errorf("第 %d 条规则: 泡比不能为负数", i+1)
			}
			if rule.NotExceeds == NotExceedsDivisor && rule.NotExceedsDivisorVal == 0 {
				return fmt.Errorf("第 %d 条规则: 未超阈值使用替代泡比时必须指定泡比", i+1)
			}
			prevMax = rule.WeightMax
		}
		return nil
	default:
		return fmt.Errorf("未知规则类型: %s", rs.Type)
	}
}

// CalculationResult 计费重计算结果，每次调用现算，不持久化
type CalculationResult struct {
	ActualWeight     float64 `json:"actualWeight"`
	VolumetricWeight float64 `json:"volumeWeight"`
	ChargeableWeight float64 `json:"chargeableWeight"`
	RuleApplied      string  `json:"ruleApplied,omitempty"`
	Calculation      string  `json:"calculation"`
}
