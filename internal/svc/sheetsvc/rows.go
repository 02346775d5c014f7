package sheetsvc

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readRows loads the whole tabular file into memory. CSV files are
// read as-is, anything else is treated as a workbook and only its
// first sheet is used.
func readRows(path string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return readCSVRows(path)
	}

	return readWorkbookRows(path)
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // rows may be ragged

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	return rows, nil
}

func readWorkbookRows(path string) ([][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	defer func() {
		_ = book.Close()
	}()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	return rows, nil
}

// cell returns the i-th value of a row, treating anything beyond the
// row's actual width as absent.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}
