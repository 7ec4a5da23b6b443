package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gakkiten/inventory-tracker/constants"
	"github.com/gakkiten/inventory-tracker/internal/acquire"
	"github.com/gakkiten/inventory-tracker/internal/extract"
	"github.com/gakkiten/inventory-tracker/internal/llm"
	"github.com/gakkiten/inventory-tracker/internal/record"
	"github.com/gakkiten/inventory-tracker/internal/usage"
)

const maxUploadBytes = 20 << 20 // per file

// HealthCheck reports service status and which optional subsystems are up.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      "inventory-tracker",
		"ai_available": h.AIAvailable,
		"database":     h.Inventory != nil,
	})
}

// Extract accepts a multipart upload (pdf, image, or image_0..N) plus a
// strategy selector and runs the extraction pipeline.
func (h *Handler) Extract(c *gin.Context) {
	strategy, _ := extract.ParseStrategy(c.PostForm("strategy"))

	inputs, err := collectInputs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "ファイルが見つかりません。pdf または image フィールドで送信してください。",
		})
		return
	}

	ctx := c.Request.Context()
	var (
		res     extract.Result
		callErr error
	)
	if len(inputs) == 1 {
		res, callErr = h.Orchestrator.ExtractFile(ctx, inputs[0], strategy)
	} else {
		res, callErr = h.Orchestrator.ExtractBatch(ctx, inputs, strategy)
	}

	if callErr != nil && !res.Success {
		c.JSON(httpStatus(callErr), res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func collectInputs(c *gin.Context) ([]extract.Input, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("マルチパートフォームの解析に失敗しました: %w", err)
	}

	if fhs := form.File["pdf"]; len(fhs) > 0 {
		in, err := readUpload(fhs[0], constants.PDF)
		if err != nil {
			return nil, err
		}
		return []extract.Input{in}, nil
	}

	if fhs := form.File["image"]; len(fhs) > 0 {
		in, err := readUpload(fhs[0], constants.IMAGE)
		if err != nil {
			return nil, err
		}
		return []extract.Input{in}, nil
	}

	// batch upload: image_0, image_1, ... until the first gap
	var inputs []extract.Input
	for i := 0; ; i++ {
		fhs := form.File[fmt.Sprintf("image_%d", i)]
		if len(fhs) == 0 {
			break
		}
		in, err := readUpload(fhs[0], constants.IMAGE)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func readUpload(fh *multipart.FileHeader, format string) (extract.Input, error) {
	if fh.Size > maxUploadBytes {
		return extract.Input{}, fmt.Errorf("ファイルサイズが大きすぎます: %s", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return extract.Input{}, fmt.Errorf("ファイルを開けません: %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Input{}, fmt.Errorf("ファイルの読み込みに失敗しました: %s", fh.Filename)
	}
	return extract.Input{Name: fh.Filename, Data: data, Format: format}, nil
}

// RecordUsage appends a usage event supplied by an external caller (the
// UI posts one entry per client-side AI call).
func (h *Handler) RecordUsage(c *gin.Context) {
	var req struct {
		Model            string `json:"model" binding:"required"`
		PromptTokens     int    `json:"prompt_tokens"`
		CompletionTokens int    `json:"completion_tokens"`
		Endpoint         string `json:"endpoint"`
		UserAction       string `json:"user_action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid usage payload"})
		return
	}
	entry := h.Meter.Record(req.Model, req.PromptTokens, req.CompletionTokens, req.Endpoint, req.UserAction)
	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

// QueryUsage returns aggregated usage stats for a period (1h|24h|7d|30d).
func (h *Handler) QueryUsage(c *gin.Context) {
	period := c.DefaultQuery("period", "24h")
	if _, ok := usage.ParsePeriod(period); !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "period must be one of 1h, 24h, 7d, 30d",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": h.Meter.Query(period)})
}

// ListInventory returns the most recent stored items.
func (h *Handler) ListInventory(c *gin.Context) {
	if h.Inventory == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	items, err := h.Inventory.List(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error("inventory.list_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "在庫の取得に失敗しました。"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// CreateInventory validates and stores a batch of product records, typically
// the output of a prior extraction call after operator review.
func (h *Handler) CreateInventory(c *gin.Context) {
	if h.Inventory == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database not configured"})
		return
	}
	var records []record.ProductRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid record payload"})
		return
	}
	valid, _, err := record.PostProcess(records, h.Logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   extract.UserMessage(err),
		})
		return
	}
	items, err := h.Inventory.InsertRecords(c.Request.Context(), valid)
	if err != nil {
		h.Logger.Error("inventory.insert_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "在庫の登録に失敗しました。"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "items": items})
}

// ExportInventory streams the inventory as csv or xlsx.
func (h *Handler) ExportInventory(c *gin.Context) {
	if h.Export == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "database not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	stamp := time.Now().Format("20060102")

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := h.Export.ExportCSV(c.Request.Context(), limit)
		if err != nil {
			h.Logger.Error("export.csv_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "エクスポートに失敗しました。"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="inventory_%s.csv"`, stamp))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	case "xlsx":
		data, err := h.Export.ExportXLSX(c.Request.Context(), limit)
		if err != nil {
			h.Logger.Error("export.xlsx_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "エクスポートに失敗しました。"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="inventory_%s.xlsx"`, stamp))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "format must be csv or xlsx"})
	}
}

// httpStatus maps the error taxonomy onto response codes. Input-side
// failures are the client's problem; upstream service trouble is not.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, acquire.ErrUnreadable),
		errors.Is(err, acquire.ErrInsufficientText),
		errors.Is(err, acquire.ErrNoText),
		errors.Is(err, llm.ErrMissingCredential),
		errors.Is(err, llm.ErrMalformedJSON),
		errors.Is(err, llm.ErrNoValidRecords),
		errors.Is(err, record.ErrNoValidRecords):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrServiceError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
