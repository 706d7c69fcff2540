// Package document describes uploaded property documents before they enter
// the extraction pipeline.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

// Document is the metadata record kept for an uploaded file.
type Document struct {
	Name        string                 `json:"name"`
	Type        constants.DocumentType `json:"type"`
	Size        int64                  `json:"size"`
	URL         string                 `json:"url"`
	ContentType string                 `json:"content_type"`
	Pages       int                    `json:"pages,omitempty"`
}

// Options bound what Inspect accepts.
type Options struct {
	MaxUploadMB int
	URL         string
}

// Inspect validates an uploaded file and builds its Document. Only PDF, JPEG
// and PNG content is accepted, judged by both extension and detected type.
func Inspect(name string, content []byte, opts Options) (Document, error) {
	maxMB := opts.MaxUploadMB
	if maxMB <= 0 {
		maxMB = constants.MaxUploadMBDefault
	}

	ext := constants.NormalizeExt(filepath.Ext(name))
	v := common.NewValidator().
		Field("name", name, common.Required).
		Field("content", content, common.Required).
		Field("size", int64(len(content)), common.MaxInt(int64(maxMB)*1024*1024)).
		Field("extension", ext, common.OneOf(constants.AllowedExtensions))
	if v.HasErrors() {
		return Document{}, common.NewAppError("INVALID_DOCUMENT", v.ErrorMessage(), common.ErrInvalidInput)
	}

	mt := mimetype.Detect(content)
	contentType := baseType(mt.String())
	if _, ok := constants.AllowedMIMETypes[contentType]; !ok {
		return Document{}, common.NewAppError("UNSUPPORTED_DOCUMENT",
			fmt.Sprintf("%s has content type %s", name, contentType), common.ErrUnsupportedInput)
	}

	doc := Document{
		Name:        filepath.Base(name),
		Type:        constants.ClassifyDocument(filepath.Base(name)),
		Size:        int64(len(content)),
		URL:         opts.URL,
		ContentType: contentType,
	}

	if contentType == "application/pdf" {
		pages, err := PageCount(content)
		if err != nil {
			return Document{}, common.NewAppError("UNSUPPORTED_DOCUMENT",
				"unreadable pdf "+name, err)
		}
		doc.Pages = pages
	}
	return doc, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(content []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return n, nil
}

// Upload converts the document and its content into a file-store upload.
func (d Document) Upload(content []byte) llm.FileUpload {
	return llm.FileUpload{
		Name:        d.Name,
		ContentType: d.ContentType,
		Content:     content,
	}
}

// FormatSize renders a byte count the way the upload panel shows it.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

func baseType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
