package service

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Aashish23092/dualasset-analyzer/utils"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFProcessor pulls OCR input out of an uploaded PDF: the text layer when the
// document has one, the embedded page images when it is a scan.
type PDFProcessor interface {
	ExtractFragments(pdfData []byte) ([]string, error)
	ExtractImages(pdfData []byte) ([][]byte, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) ExtractFragments(pdfData []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var fragments []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			fragments = append(fragments, utils.SplitFragments(strings.Join(words, " "))...)
		}
	}
	return fragments, nil
}

// ExtractImages returns the encoded bytes of every image embedded in the PDF,
// in page order.
func (p *pdfProcessor) ExtractImages(pdfData []byte) ([][]byte, error) {
	var extracted []pageImage
	digest := func(img model.Image, _ bool, _ int) error {
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("failed to read image %s on page %d: %w", img.Name, img.PageNr, err)
		}
		extracted = append(extracted, pageImage{page: img.PageNr, objNr: img.ObjNr, data: data})
		return nil
	}

	if err := api.ExtractImages(bytes.NewReader(pdfData), nil, digest, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	sortPageImages(extracted)

	images := make([][]byte, 0, len(extracted))
	for _, img := range extracted {
		images = append(images, img.data)
	}
	return images, nil
}

type pageImage struct {
	page  int
	objNr int
	data  []byte
}

// sortPageImages orders images by page number, then by object number so
// several images on one page keep a stable order.
func sortPageImages(images []pageImage) {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].page != images[j].page {
			return images[i].page < images[j].page
		}
		return images[i].objNr < images[j].objNr
	})
}
