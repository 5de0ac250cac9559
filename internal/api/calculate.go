package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wuxmax123/express-ledger/internal/model"
	"github.com/wuxmax123/express-ledger/internal/weight"
)

// CalculateRequest 计费重计算请求
// 指定 channelCode 时用渠道规则；否则用 divisor，再缺省用配置的默认泡比
type CalculateRequest struct {
	ChannelCode  string   `json:"channelCode"`
	Divisor      *float64 `json:"divisor"`
	Length       *float64 `json:"length"`
	Width        *float64 `json:"width"`
	Height       *float64 `json:"height"`
	ActualWeight *float64 `json:"actualWeight"`
}

// Calculate 计算计费重
// POST /api/calculate
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	rs, err := h.resolveRuleSet(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := weight.Evaluate(weight.Request{
		Length:       req.Length,
		Width:        req.Width,
		Height:       req.Height,
		ActualWeight: req.ActualWeight,
	}, rs)
	if err != nil {
		var inputErr *weight.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// resolveRuleSet 解析本次计算用的规则集
func (h *Handler) resolveRuleSet(req CalculateRequest) (model.ChannelRuleSet, error) {
	if req.ChannelCode != "" {
		rs, err := h.store.GetRuleSet(req.ChannelCode)
		if err != nil {
			return model.ChannelRuleSet{}, err
		}
		if rs != nil {
			return *rs, nil
		}
		// 渠道未配置规则时退回默认泡比
	}

	divisor := h.defaultDivisor()
	if req.Divisor != nil && *req.Divisor > 0 {
		divisor = *req.Divisor
	}
	return model.ChannelRuleSet{Type: model.RuleSetSimple, Divisor: divisor}, nil
}
