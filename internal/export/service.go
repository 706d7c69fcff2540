package export

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

const (
	summarySheet = "Listings"
	fieldsSheet  = "Fields"
)

// Row is one processed document as it appears in the workbook.
type Row struct {
	File         string
	DocumentType string
	Pages        int
	Size         string
	Fields       map[string]string
	Enhanced     []string
	Degraded     bool
	Warnings     []string
	Error        string
}

// summaryColumns are the fixed field columns of the summary sheet.
var summaryColumns = []struct {
	header string
	field  string
}{
	{"Address", llm.FieldPropertyAddress},
	{"City", llm.FieldCity},
	{"State/Province", llm.FieldState},
	{"Postal Code", llm.FieldZipCode},
	{"List Price", llm.FieldListPrice},
	{"Property Type", llm.FieldPropertyType},
	{"Bedrooms", llm.FieldBedrooms},
	{"Bathrooms", llm.FieldBathrooms},
	{"Square Feet", llm.FieldSquareFeet},
	{"Year Built", llm.FieldYearBuilt},
	{"Title", llm.FieldTitle},
}

// Service produces XLSX bytes for batch extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns a workbook with a one-row-per-document summary sheet
// and a long-format sheet holding every extracted field with its source.
func (s *Service) ResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet is renamed rather than added so the workbook has no
	// empty "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	idx, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(idx)

	headers := []string{"File", "Document Type", "Pages", "Size", "Status"}
	for _, c := range summaryColumns {
		headers = append(headers, c.header)
	}
	headers = append(headers, "Web Search Fields", "Notes")
	writeRow(f, summarySheet, 1, headers)
	writeRow(f, fieldsSheet, 1, []string{"File", "Field", "Value", "Source"})

	fieldRow := 2
	for i, r := range rows {
		values := []any{r.File, r.DocumentType, pagesCell(r.Pages), r.Size, status(r)}
		for _, c := range summaryColumns {
			values = append(values, r.Fields[c.field])
		}
		notes := r.Warnings
		if r.Error != "" {
			notes = append([]string{r.Error}, notes...)
		}
		values = append(values, strings.Join(r.Enhanced, ", "), truncate(strings.Join(notes, "; "), 300))
		writeRow(f, summarySheet, i+2, values)

		enhanced := make(map[string]struct{}, len(r.Enhanced))
		for _, k := range r.Enhanced {
			enhanced[k] = struct{}{}
		}
		for _, k := range llm.FieldMap(r.Fields).Keys() {
			source := "document"
			if _, ok := enhanced[k]; ok {
				source = "web search"
			}
			writeRow(f, fieldsSheet, fieldRow, []any{r.File, k, r.Fields[k], source})
			fieldRow++
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 48) // file
	_ = f.SetColWidth(summarySheet, "B", "B", 20) // type
	_ = f.SetColWidth(summarySheet, "C", "E", 10)
	_ = f.SetColWidth(summarySheet, "F", "F", 36) // address
	_ = f.SetColWidth(fieldsSheet, "A", "A", 48)
	_ = f.SetColWidth(fieldsSheet, "B", "B", 18)
	_ = f.SetColWidth(fieldsSheet, "C", "C", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"field_rows", fieldRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteResultsFile writes the workbook to path.
func (s *Service) WriteResultsFile(path string, rows []Row) error {
	data, err := s.ResultsXLSX(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func status(r Row) string {
	switch {
	case r.Error != "":
		return "failed"
	case r.Degraded:
		return "partial"
	default:
		return "ok"
	}
}

func pagesCell(n int) any {
	if n <= 0 {
		return ""
	}
	return n
}

// truncate caps s at n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
