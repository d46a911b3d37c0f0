package partnerimport

import (
	"time"
)

// Session holds the rows of one uploaded file until they are committed
type Session struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Rows       []Row     `json:"rows"`
}

// Valid reports whether every row is valid
func (s *Session) Valid() bool {
	return s.ErrorCount() == 0
}

// ErrorCount returns the number of invalid rows
func (s *Session) ErrorCount() int {
	n := 0
	for _, r := range s.Rows {
		if !r.Valid() {
			n++
		}
	}
	return n
}

// EditCell replaces one cell and re-validates that row only.
// index is the 0-based position in Rows.
func (s *Session) EditCell(index int, column, value string) (Row, error) {
	if index < 0 || index >= len(s.Rows) {
		return Row{}, ErrRowOutOfRange
	}
	row := &s.Rows[index]
	cell := row.Record.cell(column)
	if cell == nil {
		return Row{}, ErrUnknownColumn
	}
	*cell = value
	row.Errors = ValidateRow(row.Record)
	return *row, nil
}
