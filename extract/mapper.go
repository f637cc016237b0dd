package extract

import (
	"github.com/civicgrab/laredo/models"
)

// ColumnSpec is the column-to-field mapping established once from the first
// captured header row. Mapping a row through it is a pure function.
type ColumnSpec struct {
	schema   *models.Schema
	fieldFor []string // per source column index; "" drops the column
	width    int      // established column count
}

// EstablishColumns builds a ColumnSpec from the first header row. When the
// table shows no header, columns are assumed to line up positionally with
// the field map's declared field order.
func EstablishColumns(header []string, fm FieldMap) *ColumnSpec {
	schema := models.NewSchema(fm.Fields)

	if len(header) == 0 {
		fieldFor := make([]string, len(fm.Fields))
		copy(fieldFor, fm.Fields)
		return &ColumnSpec{schema: schema, fieldFor: fieldFor, width: len(fieldFor)}
	}

	fieldFor := make([]string, len(header))
	for i, cell := range header {
		if field, ok := fm.Columns[normalizeHeader(cell)]; ok {
			fieldFor[i] = field
		}
	}
	return &ColumnSpec{schema: schema, fieldFor: fieldFor, width: len(header)}
}

// Schema returns the output schema shared by all mapped records.
func (c *ColumnSpec) Schema() *models.Schema {
	return c.schema
}

// Width returns the established column count.
func (c *ColumnSpec) Width() int {
	return c.width
}

// MapRow converts one raw row into a Record. Rows whose cell count differs
// from the established width are still mapped positionally; the returned
// flag reports the shape mismatch so the caller can record a diagnostic
// instead of dropping data.
func (c *ColumnSpec) MapRow(row models.RawRow) (*models.Record, bool) {
	rec := models.NewRecord(c.schema)
	n := len(row)
	if n > len(c.fieldFor) {
		n = len(c.fieldFor)
	}
	for i := 0; i < n; i++ {
		if c.fieldFor[i] == "" {
			continue
		}
		rec.Set(c.fieldFor[i], row[i])
	}
	return rec, len(row) != c.width
}
