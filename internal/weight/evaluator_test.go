package weight

import (
	"errors"
	"strings"
	"testing"

	"github.com/wuxmax123/express-ledger/internal/model"
)

func f(v float64) *float64 { return &v }

func simpleRules(divisor float64) model.ChannelRuleSet {
	return model.ChannelRuleSet{Type: model.RuleSetSimple, Divisor: divisor}
}

func TestEvaluateSimple(t *testing.T) {
	// 30×20×10 / 5000 = 1.2 < 实重 1.5
	result, err := Evaluate(Request{
		Length: f(30), Width: f(20), Height: f(10), ActualWeight: f(1.5),
	}, simpleRules(5000))
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if result.VolumetricWeight != 1.2 {
		t.Errorf("volumetric = %v, want 1.2", result.VolumetricWeight)
	}
	if result.ChargeableWeight != 1.5 {
		t.Errorf("chargeable = %v, want 1.5", result.ChargeableWeight)
	}
	if !strings.Contains(result.Calculation, "体积重 = (30 × 20 × 10) / 5000") {
		t.Errorf("derivation 缺少代入值: %q", result.Calculation)
	}
}

func TestEvaluateSimpleVolumetricWins(t *testing.T) {
	result, err := Evaluate(Request{
		Length: f(50), Width: f(40), Height: f(30), ActualWeight: f(2),
	}, simpleRules(5000))
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	// 60000/5000 = 12
	if result.VolumetricWeight != 12 {
		t.Errorf("volumetric = %v, want 12", result.VolumetricWeight)
	}
	if result.ChargeableWeight != 12 {
		t.Errorf("chargeable = %v, want 12", result.ChargeableWeight)
	}
}

func TestEvaluateConditionalNotExceeded(t *testing.T) {
	rs := model.ChannelRuleSet{
		Type: model.RuleSetConditional,
		Rules: []model.ConditionalRule{
			{WeightMax: 2, BaseDivisor: 6000, VolumeRatioThreshold: 2, ExceedsDivisor: 8000},
		},
	}

	// 体积比率 = 6000/6000/1.5 = 0.667 ≤ 2 → 按实重收费
	result, err := Evaluate(Request{
		Length: f(30), Width: f(20), Height: f(10), ActualWeight: f(1.5),
	}, rs)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if result.ChargeableWeight != 1.5 {
		t.Errorf("chargeable = %v, want 1.5", result.ChargeableWeight)
	}
	if !strings.Contains(result.RuleApplied, "按实重收费") {
		t.Errorf("ruleApplied = %q", result.RuleApplied)
	}
	if !strings.Contains(result.Calculation, "0.667") {
		t.Errorf("derivation 缺少体积比率: %q", result.Calculation)
	}
}

func TestEvaluateConditionalExceeded(t *testing.T) {
	rs := model.ChannelRuleSet{
		Type: model.RuleSetConditional,
		Rules: []model.ConditionalRule{
			{WeightMax: 5, BaseDivisor: 6000, VolumeRatioThreshold: 2, ExceedsDivisor: 8000},
		},
	}

	// 体积 60000, 比率 = 60000/6000/2 = 5 > 2 → 泡比 /8000
	result, err := Evaluate(Request{
		Length: f(50), Width: f(40), Height: f(30), ActualWeight: f(2),
	}, rs)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if result.VolumetricWeight != 7.5 {
		t.Errorf("volumetric = %v, want 7.5", result.VolumetricWeight)
	}
	if result.ChargeableWeight != 7.5 {
		t.Errorf("chargeable = %v, want 7.5", result.ChargeableWeight)
	}
	if !strings.Contains(result.RuleApplied, "/8000") {
		t.Errorf("ruleApplied = %q", result.RuleApplied)
	}
}

func TestEvaluateConditionalNotExceededAlternateDivisor(t *testing.T) {
	rs := model.ChannelRuleSet{
		Type: model.RuleSetConditional,
		Rules: []model.ConditionalRule{
			{
				WeightMax: 5, BaseDivisor: 6000, VolumeRatioThreshold: 10,
				ExceedsDivisor: 8000,
				NotExceeds:     model.NotExceedsDivisor, NotExceedsDivisorVal: 7000,
			},
		},
	}

	result, err := Evaluate(Request{
		Length: f(50), Width: f(40), Height: f(30), ActualWeight: f(2),
	}, rs)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	// 60000/7000 = 8.571
	if result.VolumetricWeight != 8.571 {
		t.Errorf("volumetric = %v, want 8.571", result.VolumetricWeight)
	}
	if result.ChargeableWeight != 8.571 {
		t.Errorf("chargeable = %v, want 8.571", result.ChargeableWeight)
	}
}

func TestEvaluateConditionalRuleOrder(t *testing.T) {
	rs := model.ChannelRuleSet{
		Type: model.RuleSetConditional,
		Rules: []model.ConditionalRule{
			{WeightMax: 1, BaseDivisor: 5000, VolumeRatioThreshold: 2, ExceedsDivisor: 6000},
			{WeightMax: 5, BaseDivisor: 6000, VolumeRatioThreshold: 2, ExceedsDivisor: 8000},
		},
	}

	// 实重 3 越过第一档，落在第二档
	result, err := Evaluate(Request{
		Length: f(50), Width: f(40), Height: f(30), ActualWeight: f(3),
	}, rs)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	// 比率 = 60000/6000/3 = 3.33 > 2 → /8000
	if result.ChargeableWeight != 7.5 {
		t.Errorf("chargeable = %v, want 7.5", result.ChargeableWeight)
	}
}

func TestEvaluateConditionalNoRuleFallback(t *testing.T) {
	rs := model.ChannelRuleSet{
		Type: model.RuleSetConditional,
		Rules: []model.ConditionalRule{
			{WeightMax: 2, BaseDivisor: 6000, VolumeRatioThreshold: 2, ExceedsDivisor: 8000},
		},
	}

	// 实重超过所有档位 → 默认泡比 5000，属正常结果
	result, err := Evaluate(Request{
		Length: f(30), Width: f(20), Height: f(10), ActualWeight: f(10),
	}, rs)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if result.VolumetricWeight != 1.2 {
		t.Errorf("volumetric = %v, want 1.2", result.VolumetricWeight)
	}
	if result.ChargeableWeight != 10 {
		t.Errorf("chargeable = %v, want 10", result.ChargeableWeight)
	}
	if !strings.Contains(result.Calculation, "未匹配到条件规则") {
		t.Errorf("derivation 缺少默认说明: %q", result.Calculation)
	}
	if !strings.Contains(result.RuleApplied, "默认规则") {
		t.Errorf("ruleApplied = %q", result.RuleApplied)
	}
}

func TestEvaluateChargeableIsMaxInEveryBranch(t *testing.T) {
	requests := []Request{
		{Length: f(30), Width: f(20), Height: f(10), ActualWeight: f(1.5)},
		{Length: f(50), Width: f(40), Height: f(30), ActualWeight: f(2)},
		{Length: f(10), Width: f(10), Height: f(10), ActualWeight: f(20)},
	}
	ruleSets := []model.ChannelRuleSet{
		simpleRules(5000),
		{Type: model.RuleSetConditional, Rules: []model.ConditionalRule{
			{WeightMax: 100, BaseDivisor: 6000, VolumeRatioThreshold: 0.5, ExceedsDivisor: 8000},
		}},
		{Type: model.RuleSetConditional, Rules: []model.ConditionalRule{
			{
				WeightMax: 100, BaseDivisor: 6000, VolumeRatioThreshold: 10,
				NotExceeds: model.NotExceedsDivisor, NotExceedsDivisorVal: 7000,
			},
		}},
		{Type: model.RuleSetConditional, Rules: []model.ConditionalRule{
			{WeightMax: 0.1, BaseDivisor: 6000, VolumeRatioThreshold: 2},
		}},
	}

	for _, req := range requests {
		for _, rs := range ruleSets {
			result, err := Evaluate(req, rs)
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			want := result.ActualWeight
			if result.VolumetricWeight > want {
				want = result.VolumetricWeight
			}
			if result.ChargeableWeight != want {
				t.Errorf("chargeable = %v, want max(%v, %v)",
					result.ChargeableWeight, result.ActualWeight, result.VolumetricWeight)
			}
		}
	}
}

func TestEvaluateMissingInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"缺长", Request{Width: f(20), Height: f(10), ActualWeight: f(1)}},
		{"缺宽", Request{Length: f(30), Height: f(10), ActualWeight: f(1)}},
		{"缺高", Request{Length: f(30), Width: f(20), ActualWeight: f(1)}},
		{"缺实重", Request{Length: f(30), Width: f(20), Height: f(10)}},
		{"零边长", Request{Length: f(0), Width: f(20), Height: f(10), ActualWeight: f(1)}},
		{"负实重", Request{Length: f(30), Width: f(20), Height: f(10), ActualWeight: f(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.req, simpleRules(5000))
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("err = %v, want *InputError", err)
			}
		})
	}
}
