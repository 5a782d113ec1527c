package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "odoo-leads/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	data := "\ufeffContact Name,Email,Permit #\nJane Doe, jane@x.com ,BP-1\nShort\n"
	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Jane Doe", rows[0].Get("contact_name", "Contact Name"))
	assert.Equal(t, "jane@x.com", rows[0].Get("Email"))
	assert.Equal(t, "BP-1", rows[0].Get("permit_number", "Permit #"))

	assert.Equal(t, "", rows[1].Get("Email"))
	assert.True(t, rows[1].Has("Email"))
	assert.False(t, rows[1].Has("Phone"))
}

func TestRowGet_FirstPresentAlias(t *testing.T) {
	row := Row{Values: map[string]string{"contact_email": "  ", "Email": "a@b.c"}}
	assert.Equal(t, "", row.Get("contact_email", "Email"))
	assert.Equal(t, "a@b.c", row.Get("Email", "contact_email"))
	assert.Equal(t, "a@b.c", row.Get("missing", "Email"))
	assert.Equal(t, "", row.Get("missing"))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte("City,Valuation\nDallas,$1.5M\n"), 0o644))

	rows, err := Open(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "$1.5M", rows[0].Get("Valuation"))
}

func TestOpen_XLSXSkipsLeadingBlankRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A3", "City"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Permit #"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "Fort Worth"))
	require.NoError(t, f.SetCellValue(sheet, "B4", "BP-77"))
	require.NoError(t, f.SetCellValue(sheet, "A6", "Plano"))

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := Open(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].Line)
	assert.Equal(t, "Fort Worth", rows[0].Get("City"))
	assert.Equal(t, "BP-77", rows[0].Get("Permit #"))
	assert.Equal(t, "Plano", rows[1].Get("City"))
	assert.Equal(t, "", rows[1].Get("Permit #"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "leads.csv"), ExpandPath("~/leads.csv"))
	assert.Equal(t, "/tmp/x.csv", ExpandPath("/tmp/x.csv"))
}

func TestRequireColumn(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("City,Permit\nDallas,BP-1\n"))
	require.NoError(t, err)

	assert.NoError(t, RequireColumn(rows, "City"))
	assert.NoError(t, RequireColumn(nil, "City"), "пустой файл не проверяется")

	err = RequireColumn(rows, "contact_name", "Contact Name")
	require.ErrorIs(t, err, apperrors.ErrMissingColumn)
	assert.Contains(t, err.Error(), "contact_name | Contact Name")
}
