package partnerimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want []string
	}{
		{
			name: "valid row",
			rec:  Record{CompanyName: "Acme", Category: "client", Status: "1", IsActive: "yes"},
		},
		{
			name: "blank optional fields",
			rec:  Record{CompanyName: "Acme", Category: "Fournisseur"},
		},
		{
			name: "status outside the enumeration",
			rec:  Record{CompanyName: "Acme", Category: "client", Status: "3"},
			want: []string{"status must be 0, 1 or 2"},
		},
		{
			name: "non numeric status",
			rec:  Record{CompanyName: "Acme", Category: "client", Status: "actif"},
			want: []string{"status must be 0, 1 or 2"},
		},
		{
			name: "missing category",
			rec:  Record{CompanyName: "Acme"},
			want: []string{"category is required"},
		},
		{
			name: "unknown category",
			rec:  Record{CompanyName: "Acme", Category: "pirate"},
			want: []string{"category pirate is unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRow(tt.rec))
		})
	}
}

func TestParseRows(t *testing.T) {
	sheet := [][]string{
		{},
		{"Company Name", "EMAIL", "category", "is_active", "extra"},
		{"Acme", "a@acme.ma", "client", "YES", "ignored"},
		{"", " ", "", ""},
		{"Beta", "", "carrier"},
	}

	rows, err := ParseRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, "Acme", rows[0].Record.CompanyName)
	assert.Equal(t, "a@acme.ma", rows[0].Record.Email)
	assert.True(t, rows[0].Valid())

	assert.Equal(t, 5, rows[1].Line)
	assert.Equal(t, "", rows[1].Record.IsActive, "short rows leave missing cells blank")
	assert.True(t, rows[1].Valid())
}

func TestParseRows_RejectsFile(t *testing.T) {
	_, err := ParseRows(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseRows([][]string{{"", ""}})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseRows([][]string{{"name", "email"}, {"Acme", "a@acme.ma"}})
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = ParseRows([][]string{{"company_name"}})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestSession_EditCellRevalidatesOneRow(t *testing.T) {
	rows, err := ParseRows([][]string{
		Columns,
		{"Acme", "", "", "", "client", "1", "YES", ""},
		{"", "", "", "", "client", "", "MAYBE", ""},
		{"Gamma", "", "", "", "", "", "", ""},
	})
	require.NoError(t, err)
	sess := &Session{Rows: rows}

	require.Len(t, sess.Rows[1].Errors, 2)
	assert.Equal(t, []string{"company_name is required", "is_active must be YES or NO"}, sess.Rows[1].Errors)
	assert.Equal(t, 2, sess.ErrorCount())

	row, err := sess.EditCell(1, ColCompanyName, "Beta")
	require.NoError(t, err)
	assert.Len(t, row.Errors, 1)

	row, err = sess.EditCell(1, ColIsActive, "no")
	require.NoError(t, err)
	assert.Empty(t, row.Errors)
	assert.Empty(t, sess.Rows[1].Errors)

	assert.Empty(t, sess.Rows[0].Errors)
	assert.Equal(t, []string{"category is required"}, sess.Rows[2].Errors, "other rows untouched")
	assert.False(t, sess.Valid())

	_, err = sess.EditCell(9, ColEmail, "x")
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = sess.EditCell(0, "nickname", "x")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestToPartner(t *testing.T) {
	p, err := ToPartner(Record{CompanyName: "Acme", Category: "Sous-traitant", Status: "2", IsActive: "No"})
	require.NoError(t, err)
	assert.Equal(t, "subcontractor", p.CategoryID)
	assert.Equal(t, "Sous-traitant", p.CategoryName)
	assert.EqualValues(t, 2, p.Status)
	assert.False(t, p.IsActive)
}
