package samples

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tradestats/domain/comparison"
	"tradestats/domain/core"
	"tradestats/internal"
	"tradestats/internal/errors"

	"github.com/xuri/excelize/v2"
)

// FileSource reads samples from a CSV or XLSX export.
type FileSource struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewFileSource picks CSV or XLSX handling from the file extension.
func NewFileSource(filePath string, logger *internal.Logger) *FileSource {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &FileSource{filePath: filePath, fileType: fileType, logger: logger}
}

// Name identifies the source in logs and errors.
func (s *FileSource) Name() string {
	return s.fileType + ":" + filepath.Base(s.filePath)
}

// LoadSamples reads the file and splits the value column by the group column.
func (s *FileSource) LoadSamples(ctx context.Context, query comparison.SampleQuery) (*comparison.SamplePair, error) {
	if err := query.Validate(); err != nil {
		return nil, core.NewInvalidInputError("query", err.Error())
	}

	table, err := s.ReadTable(ctx)
	if err != nil {
		return nil, err
	}

	valueCol := NormalizeHeader(query.ValueColumn)
	groupCol := NormalizeHeader(query.GroupColumn)
	for _, col := range []string{valueCol, groupCol} {
		if !table.HasColumn(col) {
			return nil, core.NewInvalidInputError("query", fmt.Sprintf("column %q not found in %s", col, s.Name()))
		}
	}

	records := make([]record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, record{group: row[groupCol], value: row[valueCol]})
	}

	query.ValueColumn, query.GroupColumn = valueCol, groupCol
	pair, err := splitGroups(query, records)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("[FileSource] %s: %d vs %d values, %d skipped", s.Name(), len(pair.GroupA), len(pair.GroupB), pair.Skipped)
	return pair, nil
}

// Table is a file read into normalised headers and string cells.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// HasColumn reports whether a normalised header exists.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ReadTable reads the whole file.
func (s *FileSource) ReadTable(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(s.fileType), s.filePath))
		}
		return nil, errors.SourceError(s.fileType, err)
	}

	switch s.fileType {
	case "csv":
		return s.readCSV()
	case "xlsx":
		return s.readExcel()
	}
	return nil, errors.SourceError(s.fileType, fmt.Errorf("unsupported file type: %s", s.fileType))
}

// readExcel reads the first sheet of the workbook.
func (s *FileSource) readExcel() (*Table, error) {
	f, err := excelize.OpenFile(s.filePath)
	if err != nil {
		return nil, errors.SourceError("xlsx", fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.SourceError("xlsx", fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	s.logger.Debug("[FileSource] sheet %s read (%d rows)", sheet, len(rows))

	return s.processRows(rows)
}

func (s *FileSource) readCSV() (*Table, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		return nil, errors.SourceError("csv", fmt.Errorf("failed to open CSV file: %w", err))
	}
	defer file.Close()

	return s.parseCSV(file)
}

func (s *FileSource) parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.SourceError("csv", fmt.Errorf("failed to read CSV file: %w", err))
	}
	s.logger.Debug("[FileSource] CSV read (%d rows)", len(rows))

	return s.processRows(rows)
}

// processRows turns raw string rows into a Table keyed by normalised header.
func (s *FileSource) processRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, errors.SourceError(s.fileType, fmt.Errorf("%s file must have a header row and at least one data row", strings.ToUpper(s.fileType)))
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = NormalizeHeader(header)
	}

	table := &Table{Headers: headers, Rows: make([]map[string]string, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		rowData := make(map[string]string, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		table.Rows = append(table.Rows, rowData)
	}
	return table, nil
}
