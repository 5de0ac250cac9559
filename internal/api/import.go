package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wuxmax123/express-ledger/internal/importer"
)

// Import 导入运价表文件 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	uploadedFile := files[0]

	// 上传文件落盘到数据目录的 uploads 下，保留原始运价文件
	saveDir := h.uploadDir
	if saveDir == "" {
		saveDir = os.TempDir()
	}
	savePath := filepath.Join(saveDir,
		fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(uploadedFile.Filename)))

	if err := c.SaveUploadedFile(uploadedFile, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	dryRun := c.DefaultPostForm("dryRun", "false") == "true"

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	coordinator := importer.NewCoordinator(h.store, h.opts, h.billing.DefaultCurrency)

	progressChan := coordinator.Import(importer.ImportOptions{
		FilePath: savePath,
		Filename: uploadedFile.Filename,
		DryRun:   dryRun,
	})

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
