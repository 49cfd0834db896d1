// Package tabular derives text chunks and a raw snapshot from row records.
//
// A table is indexed twice: once row-oriented (the whole table as one
// chunk) and once column-oriented (one chunk per field). Column chunks
// exist because aggregate questions ("what is the sum of column X") rarely
// land near any single row in embedding space.
package tabular

import (
	"strings"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
)

// ColumnHeading prefixes every per-column chunk.
const ColumnHeading = "Column: "

// Derive turns rows into text chunks plus the raw snapshot rows.
// The first chunk is the whole table, optionally prefixed (e.g. with a
// sheet name); one more chunk follows per field of the first row. Rows
// missing a field render the missing-value sentinel. Empty input yields
// nothing.
func Derive(rows []models.Row, prefix string) ([]string, []models.Row) {
	if len(rows) == 0 {
		return nil, nil
	}

	fields := rows[0].Fields()
	chunks := make([]string, 0, len(fields)+1)

	var table strings.Builder
	if prefix != "" {
		table.WriteString(prefix)
		table.WriteByte('\n')
	}
	for i, row := range rows {
		if i > 0 {
			table.WriteByte('\n')
		}
		for j, field := range fields {
			if j > 0 {
				table.WriteString("; ")
			}
			table.WriteString(field)
			table.WriteString(": ")
			table.WriteString(row.Get(field))
		}
	}
	chunks = append(chunks, table.String())

	for _, field := range fields {
		var col strings.Builder
		col.WriteString(ColumnHeading)
		col.WriteString(field)
		for _, row := range rows {
			col.WriteByte('\n')
			col.WriteString(row.Get(field))
		}
		chunks = append(chunks, col.String())
	}

	return chunks, rows
}
