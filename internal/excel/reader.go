// internal/excel/reader.go
package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/esc4n0rx/abastececd/internal/domain"
)

// Row is one spreadsheet data row keyed by column header. Values are the
// raw cell contents; typing happens downstream in the row mapper.
type Row map[string]string

// SupportedExtension reports whether ext (with or without a leading dot)
// names one of the two supported spreadsheet formats.
func SupportedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	return ext == "csv" || ext == "xlsx"
}

// ReadRows parses the file contents into rows. The first sheet is used for
// xlsx files and the first row always defines the column headers.
func ReadRows(data []byte, ext string) ([]Row, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	switch ext {
	case "csv":
		return readCSV(data)
	case "xlsx":
		return readXLSX(data)
	default:
		return nil, domain.ErrInvalidFileType
	}
}

func readCSV(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		rows = append(rows, rowFromRecord(header, record))
	}

	return rows, nil
}

func readXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer iter.Close()

	var header []string
	var rows []Row
	for iter.Next() {
		record, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read xlsx row: %w", err)
		}
		if header == nil {
			header = make([]string, len(record))
			for i, h := range record {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}
		rows = append(rows, rowFromRecord(header, record))
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error iterating xlsx rows: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("xlsx sheet %s is empty", sheets[0])
	}

	return rows, nil
}

func rowFromRecord(header, record []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}
