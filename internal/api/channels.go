package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wuxmax123/express-ledger/internal/model"
)

// ListChannels 列出全部渠道
// GET /api/channels
func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.store.ListChannels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// GetChannel 获取单个渠道
// GET /api/channels/:code
func (h *Handler) GetChannel(c *gin.Context) {
	code := c.Param("code")
	channel, err := h.store.GetChannel(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "渠道不存在: " + code})
		return
	}
	c.JSON(http.StatusOK, channel)
}

// RulesResponse 渠道计费规则响应
type RulesResponse struct {
	ChannelCode string                `json:"channelCode"`
	Configured  bool                  `json:"configured"`
	RuleSet     *model.ChannelRuleSet `json:"ruleSet,omitempty"`
}

// GetRules 获取渠道计费规则
// GET /api/channels/:code/rules
func (h *Handler) GetRules(c *gin.Context) {
	code := c.Param("code")
	rs, err := h.store.GetRuleSet(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, RulesResponse{
		ChannelCode: code,
		Configured:  rs != nil,
		RuleSet:     rs,
	})
}

// PutRules 写入渠道计费规则，整体替换
// PUT /api/channels/:code/rules
func (h *Handler) PutRules(c *gin.Context) {
	code := c.Param("code")

	var rs model.ChannelRuleSet
	if err := c.ShouldBindJSON(&rs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的规则数据: " + err.Error()})
		return
	}

	if err := rs.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.PutRuleSet(code, rs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListVersions 列出渠道运价表版本
// GET /api/channels/:code/versions
func (h *Handler) ListVersions(c *gin.Context) {
	code := c.Param("code")
	versions, err := h.store.ListRateSheetVersions(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// GetRates 获取渠道当前版本的运价明细
// GET /api/channels/:code/rates
func (h *Handler) GetRates(c *gin.Context) {
	code := c.Param("code")
	active, err := h.store.GetActiveRateSheet(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "渠道没有运价数据: " + code})
		return
	}
	items, err := h.store.GetRateItems(active.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": active, "items": items})
}

// GetDiff 对比渠道最近两个版本的价格差异
// GET /api/channels/:code/diff
func (h *Handler) GetDiff(c *gin.Context) {
	code := c.Param("code")
	versions, err := h.store.ListRateSheetVersions(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(versions) < 2 {
		c.JSON(http.StatusOK, gin.H{"diffs": []model.RateDiff{}})
		return
	}

	// versions 按时间倒序：versions[0] 是当前，versions[1] 是上一版本
	diffs, err := h.store.DiffRateSheets(versions[1].ID, versions[0].ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if diffs == nil {
		diffs = []model.RateDiff{}
	}
	c.JSON(http.StatusOK, gin.H{
		"oldVersion": versions[1],
		"newVersion": versions[0],
		"diffs":      diffs,
	})
}

// GetSignature 获取渠道重量段结构签名基线
// GET /api/channels/:code/signature
func (h *Handler) GetSignature(c *gin.Context) {
	code := c.Param("code")
	sig, err := h.store.GetSignature(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sig == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "渠道没有签名基线: " + code})
		return
	}
	c.JSON(http.StatusOK, sig)
}
