package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 运行时可覆盖的配置键
const (
	configKeyDefaultDivisor  = "default_divisor"
	configKeyDefaultCurrency = "default_currency"
)

// SettingsResponse 运行时设置响应
type SettingsResponse struct {
	DefaultDivisor  float64 `json:"defaultDivisor"`  // 默认泡比
	DefaultCurrency string  `json:"defaultCurrency"` // 默认币种
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	// 使用 map 允许部分更新
	Updates map[string]interface{} `json:"updates"`
}

// GetSettings 获取运行时设置
// GET /api/config
// 数据库里没有的项退回 config.toml 的值
func (h *Handler) GetSettings(c *gin.Context) {
	allConfig, err := h.store.GetAllConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}

	response := SettingsResponse{
		DefaultDivisor:  h.billing.DefaultDivisor,
		DefaultCurrency: h.billing.DefaultCurrency,
	}
	if val, ok := allConfig[configKeyDefaultDivisor]; ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			response.DefaultDivisor = f
		}
	}
	if val, ok := allConfig[configKeyDefaultCurrency]; ok && val != "" {
		response.DefaultCurrency = val
	}

	c.JSON(http.StatusOK, response)
}

// UpdateSettings 更新运行时设置
// PATCH /api/config
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	for key, value := range req.Updates {
		var strValue string

		switch v := value.(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			strValue = strconv.Itoa(v)
		default:
			continue // 跳过不支持的类型
		}

		if key == configKeyDefaultDivisor {
			if f, err := strconv.ParseFloat(strValue, 64); err != nil || f <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "默认泡比必须为正数"})
				return
			}
		}

		if err := h.store.SetConfig(key, strValue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "更新配置失败: " + key,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "配置更新成功"})
}

// defaultDivisor 当前生效的默认泡比，数据库覆盖值优先
func (h *Handler) defaultDivisor() float64 {
	if f, err := h.store.GetConfigFloat(configKeyDefaultDivisor); err == nil && f > 0 {
		return f
	}
	return h.billing.DefaultDivisor
}
