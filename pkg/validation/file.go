package validation

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "odoo-leads/pkg/errors"
)

// ImportRules - допустимые типы содержимого по расширению входного файла.
var ImportRules = map[string][]string{
	".csv":  {"text/plain; charset=utf-8", "text/csv; charset=utf-8"},
	".xlsx": {"application/zip"},
	".xlsm": {"application/zip"},
}

// MaxImportSizeMB - ограничение размера входного файла.
const MaxImportSizeMB = 200

// ValidateImportFile проверяет расширение, размер и сигнатуру файла импорта.
func ValidateImportFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	allowed, ok := ImportRules[ext]
	if !ok {
		return apperrors.NewInvalidInputError("неподдерживаемый формат файла '%s': ожидается .csv, .xlsx или .xlsm", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("ошибка чтения файла: %w", err)
	}
	maxSizeBytes := int64(MaxImportSizeMB) * 1024 * 1024
	if info.Size() > maxSizeBytes {
		return apperrors.NewInvalidInputError("размер файла (%.2f MB) превышает лимит в %d MB", float64(info.Size())/1024/1024, MaxImportSizeMB)
	}

	// Тип определяем по первым 512 байтам
	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("ошибка чтения файла: %w", err)
	}
	mimeType := http.DetectContentType(buffer[:n])

	if !slices.Contains(allowed, mimeType) {
		return apperrors.NewInvalidInputError("содержимое файла (%s) не соответствует расширению %s", mimeType, ext)
	}
	return nil
}
