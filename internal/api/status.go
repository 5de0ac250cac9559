package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已初始化（有数据）
	ChannelCount   int    `json:"channelCount"`   // 渠道数
	RateSheetCount int    `json:"rateSheetCount"` // 运价表版本数
	RateItemCount  int    `json:"rateItemCount"`  // 运价明细总数
	LastImportTime string `json:"lastImportTime"` // 最后导入时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	var resp StatusResponse

	db := h.store.DB()
	if err := db.QueryRow("SELECT COUNT(*) FROM channels").Scan(&resp.ChannelCount); err != nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	_ = db.QueryRow("SELECT COUNT(*) FROM rate_sheets").Scan(&resp.RateSheetCount)
	_ = db.QueryRow("SELECT COUNT(*) FROM rate_items").Scan(&resp.RateItemCount)

	var last sql.NullString
	_ = db.QueryRow("SELECT MAX(completed_at) FROM import_logs WHERE status = 'completed'").Scan(&last)
	resp.LastImportTime = last.String

	resp.Initialized = resp.ChannelCount > 0
	c.JSON(http.StatusOK, resp)
}
