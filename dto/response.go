package dto

import "errors"

// Custom errors
var (
	ErrNoCandidatesFound    = errors.New("no offers found")
	ErrEmptyAfterValidation = errors.New("no valid offers after reconciliation")
	ErrOCRUnavailable       = errors.New("text recognition unavailable")
	ErrUnsupportedFile      = errors.New("unsupported file type")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ImageResult is the per-file outcome inside a batch. Exactly one of
// Result and Error is meaningful.
type ImageResult struct {
	Filename string          `json:"filename"`
	Result   *AnalysisResult `json:"result,omitempty"`
	Rows     []OfferRow      `json:"rows,omitempty"`
	Status   RunStatus       `json:"status"`
	Error    string          `json:"error,omitempty"`
	Message  string          `json:"message"`
	Err      error           `json:"-"`
}

// AnalyzeResponse is the final response structure
type AnalyzeResponse struct {
	Results     []ImageResult `json:"results"`
	ProcessedAt string        `json:"processed_at"`
}
