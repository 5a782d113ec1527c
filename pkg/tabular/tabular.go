// Файл: pkg/tabular/tabular.go
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/validation"
)

// Row - строка таблицы: значения по имени колонки и номер строки в файле (с 1).
type Row struct {
	Line   int
	Values map[string]string
}

// Get возвращает значение первой из перечисленных колонок, которая есть в заголовке,
// даже если ячейка пустая.
func (r Row) Get(aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := r.Values[alias]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Has - присутствует ли в строке хотя бы одна из колонок.
func (r Row) Has(aliases ...string) bool {
	for _, alias := range aliases {
		if _, ok := r.Values[alias]; ok {
			return true
		}
	}
	return false
}

// RequireColumn - в заголовке есть хотя бы один из псевдонимов колонки.
func RequireColumn(rows []Row, aliases ...string) error {
	if len(rows) == 0 || rows[0].Has(aliases...) {
		return nil
	}
	return fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, strings.Join(aliases, " | "))
}

// ExpandPath раскрывает ~ в домашний каталог.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Open читает CSV или XLSX файл. Первая строка (первая непустая для XLSX) - заголовок.
func Open(path string) ([]Row, error) {
	path = ExpandPath(path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("файл %s недоступен: %w", path, err)
	}
	if err := validation.ValidateImportFile(path); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV разбирает CSV с заголовком. Строки с другим числом колонок допускаются.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заголовка CSV: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения CSV, строка %d: %w", line, err)
		}
		rows = append(rows, toRow(header, record, line))
	}
	return rows, nil
}

func readXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	data, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения листа %s: %w", sheets[0], err)
	}

	headerIdx := -1
	for i, row := range data {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, nil
	}

	header := data[headerIdx]
	var rows []Row
	for i := headerIdx + 1; i < len(data); i++ {
		if strings.TrimSpace(strings.Join(data[i], "")) == "" {
			continue
		}
		rows = append(rows, toRow(header, data[i], i+1))
	}
	return rows, nil
}

func toRow(header, record []string, line int) Row {
	values := make(map[string]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if i < len(record) {
			values[name] = record[i]
		} else {
			values[name] = ""
		}
	}
	return Row{Line: line, Values: values}
}
