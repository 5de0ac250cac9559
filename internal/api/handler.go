package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wuxmax123/express-ledger/internal/classify"
	"github.com/wuxmax123/express-ledger/internal/config"
	"github.com/wuxmax123/express-ledger/internal/store"
)

// Handler API 处理器
type Handler struct {
	store     *store.Store
	billing   config.BillingConfig
	opts      classify.Options
	uploadDir string
}

// NewHandler 创建 API 处理器
// uploadDir 是上传运价文件的落盘目录，为空时退回系统临时目录
func NewHandler(st *store.Store, cfg *config.AppConfig, uploadDir string) *Handler {
	opts := classify.DefaultOptions()
	if cfg.DetectorOptionsValid() {
		opts = classify.Options{
			HeaderScanRows:   cfg.Detector.HeaderScanRows,
			HeaderScanCols:   cfg.Detector.HeaderScanCols,
			ColumnScanRows:   cfg.Detector.ColumnScanRows,
			MinColumnMatches: cfg.Detector.MinColumnMatches,
			ForwardFillRows:  cfg.Detector.ForwardFillRows,
		}
	}
	return &Handler{
		store:     st,
		billing:   cfg.Billing,
		opts:      opts,
		uploadDir: uploadDir,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 运价表导入
	router.POST("/import", h.Import)

	// 渠道
	router.GET("/channels", h.ListChannels)
	router.GET("/channels/:code", h.GetChannel)
	router.GET("/channels/:code/rules", h.GetRules)
	router.PUT("/channels/:code/rules", h.PutRules)
	router.GET("/channels/:code/versions", h.ListVersions)
	router.GET("/channels/:code/rates", h.GetRates)
	router.GET("/channels/:code/diff", h.GetDiff)
	router.GET("/channels/:code/signature", h.GetSignature)

	// 运行时设置
	router.GET("/config", h.GetSettings)
	router.PATCH("/config", h.UpdateSettings)

	// 计费重计算
	router.POST("/calculate", h.Calculate)
}
