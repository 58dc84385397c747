package dto

import (
	"errors"
	"mime/multipart"
	"strings"
)

var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".pdf"}

// AnalyzeRequest represents an upload of one or more Dual Asset screenshots
type AnalyzeRequest struct {
	Files            []*multipart.FileHeader `form:"files[]" binding:"required"`
	ReferencePrice   *float64                `form:"reference_price" binding:"omitempty,gt=0"`
	InvestmentAmount *float64                `form:"investment_amount" binding:"omitempty,gt=0"`
}

// Validate performs the request-level checks gin binding cannot express.
// File types are checked per upload so one bad file does not sink a batch.
func (r *AnalyzeRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New("at least one file is required")
	}
	return nil
}

// IsSupportedFile checks the file extension against the accepted upload types
func IsSupportedFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsPDF reports whether the upload should go through the PDF processor
func IsPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// Upload is a file already read into memory, decoupled from multipart.
type Upload struct {
	Filename string
	Data     []byte
}

// RunOptions carries per-request overrides for one analysis batch.
type RunOptions struct {
	ReferencePrice   *float64
	InvestmentAmount *float64
}
