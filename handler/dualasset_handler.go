package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/logger"
	"github.com/Aashish23092/dualasset-analyzer/service"
	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

const exportFilename = "dualasset_results.csv"

// DualAssetHandler handles Dual Asset screenshot analysis requests
type DualAssetHandler struct {
	analysisService *service.AnalysisService
	maxFileSize     int64
}

func NewDualAssetHandler(analysisService *service.AnalysisService, maxFileSize int64) *DualAssetHandler {
	return &DualAssetHandler{
		analysisService: analysisService,
		maxFileSize:     maxFileSize,
	}
}

// Analyze handles POST /api/v1/dualasset/analyze
func (h *DualAssetHandler) Analyze(c *gin.Context) {
	results, ok := h.run(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.AnalyzeResponse{
		Results:     results,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Export handles POST /api/v1/dualasset/export and returns the offer table as CSV
func (h *DualAssetHandler) Export(c *gin.Context) {
	results, ok := h.run(c)
	if !ok {
		return
	}

	var rows []dto.OfferRow
	for _, r := range results {
		rows = append(rows, r.Rows...)
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		h.sendError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to render CSV", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// run binds the upload, runs the batch and writes an error response when no
// upload produced an analysis.
func (h *DualAssetHandler) run(c *gin.Context) ([]dto.ImageResult, bool) {
	ctx := c.Request.Context()

	var req dto.AnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one file under files[] is required; reference_price and investment_amount must be positive numbers", err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), err)
		return nil, false
	}

	uploads := make([]dto.Upload, 0, len(req.Files))
	for _, file := range req.Files {
		if h.maxFileSize > 0 && file.Size > h.maxFileSize {
			h.sendError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
				fmt.Sprintf("%s exceeds the %d byte upload limit", file.Filename, h.maxFileSize), nil)
			return nil, false
		}

		reader, err := file.Open()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "UPLOAD_READ_FAILED", "Failed to open uploaded file", err)
			return nil, false
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "UPLOAD_READ_FAILED", "Failed to read uploaded file", err)
			return nil, false
		}

		uploads = append(uploads, dto.Upload{Filename: file.Filename, Data: data})
	}

	logger.Info(ctx, "Received Dual Asset analysis request", "files", len(uploads))

	results := h.analysisService.AnalyzeBatch(ctx, uploads, dto.RunOptions{
		ReferencePrice:   req.ReferencePrice,
		InvestmentAmount: req.InvestmentAmount,
	})

	if status, code, failed := batchFailure(results); failed {
		messages := make([]string, 0, len(results))
		for _, r := range results {
			messages = append(messages, r.Message)
		}
		h.sendError(c, status, code, strings.Join(messages, " "), nil)
		return nil, false
	}

	return results, true
}

// batchFailure maps a batch in which every upload failed to an HTTP status.
// The first failure decides.
func batchFailure(results []dto.ImageResult) (status int, code string, failed bool) {
	for _, r := range results {
		if r.Status != dto.RunStatusEmpty {
			return 0, "", false
		}
	}
	if len(results) == 0 {
		return http.StatusBadRequest, "INVALID_REQUEST", true
	}

	err := results[0].Err
	switch {
	case errors.Is(err, dto.ErrOCRUnavailable):
		return http.StatusBadGateway, "OCR_UNAVAILABLE", true
	case errors.Is(err, dto.ErrUnsupportedFile):
		return http.StatusBadRequest, "UNSUPPORTED_FILE", true
	case errors.Is(err, dto.ErrEmptyAfterValidation):
		return http.StatusUnprocessableEntity, "NO_VALID_OFFERS", true
	default:
		return http.StatusUnprocessableEntity, "NO_OFFERS_FOUND", true
	}
}

// sendError sends a structured error response
func (h *DualAssetHandler) sendError(c *gin.Context, statusCode int, code, message string, err error) {
	if err != nil {
		logger.ErrorWithErr(c.Request.Context(), message, err, "status", statusCode)
	} else {
		logger.Warn(c.Request.Context(), message, "status", statusCode)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    statusCode,
	})
}
