package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "odoo-leads/pkg/errors"
)

type leadRow struct {
	ContactName  string      `validate:"contact_name"`
	Email        string      `validate:"omitempty,custom_email"`
	PermitNumber null.String `validate:"required,permit_number"`
}

func TestRules(t *testing.T) {
	v := New()
	valid := leadRow{ContactName: "Jane Doe", Email: "jane@x.com", PermitNumber: null.StringFrom("BP-2024-001")}
	assert.NoError(t, v.Validate(valid))

	tests := []struct {
		name string
		mod  func(r *leadRow)
	}{
		{"out to bid", func(r *leadRow) { r.ContactName = "out to bid" }},
		{"blank contact", func(r *leadRow) { r.ContactName = "  " }},
		{"none email", func(r *leadRow) { r.Email = "None" }},
		{"null permit", func(r *leadRow) { r.PermitNumber = null.String{} }},
		{"blank permit", func(r *leadRow) { r.PermitNumber = null.StringFrom("   ") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mod(&row)
			assert.Error(t, v.Validate(row))
		})
	}

	for _, permit := range []string{"BP 2024-001", "BP#7", "(A) 12"} {
		row := valid
		row.PermitNumber = null.StringFrom(permit)
		assert.NoError(t, v.Validate(row), permit)
	}
}

func TestValidateImportFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Contact Name,Email\nJane,j@x.com\n"), 0o644))
	assert.NoError(t, ValidateImportFile(csvPath))

	txtPath := filepath.Join(dir, "leads.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, ValidateImportFile(txtPath), &invalid)

	fakeXLSX := filepath.Join(dir, "leads.xlsx")
	require.NoError(t, os.WriteFile(fakeXLSX, []byte("City,Permit\n"), 0o644))
	assert.Error(t, ValidateImportFile(fakeXLSX))
}
