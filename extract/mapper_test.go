package extract

import (
	"testing"

	"github.com/civicgrab/laredo/models"
)

func testFieldMap(fields ...string) FieldMap {
	columns := make(map[string]string, len(fields))
	for _, f := range fields {
		columns[normalizeHeader(f)] = f
	}
	return FieldMap{Fields: fields, Columns: columns}
}

func TestEstablishColumns_HeaderBased(t *testing.T) {
	// Header order differs from field order; mapping follows header names.
	spec := EstablishColumns([]string{"Filed Date", "Case ID", "Parties"}, FieldMap{
		Fields: []string{"case_id", "filed_date", "parties"},
		Columns: map[string]string{
			"case id":    "case_id",
			"filed date": "filed_date",
			"parties":    "parties",
		},
	})

	rec, mismatch := spec.MapRow(models.RawRow{"Aug 1, 2026", "C-100", "DOE v SMITH"})
	if mismatch {
		t.Fatal("unexpected shape mismatch")
	}
	if got := rec.GetString("case_id"); got != "C-100" {
		t.Errorf("case_id = %q, want C-100", got)
	}
	if got := rec.GetString("filed_date"); got != "Aug 1, 2026" {
		t.Errorf("filed_date = %q, want Aug 1, 2026", got)
	}
}

func TestEstablishColumns_UnknownHeaderDropped(t *testing.T) {
	fm := testFieldMap("case_id")
	spec := EstablishColumns([]string{"Case ID", "Internal Flags"}, fm)

	rec, mismatch := spec.MapRow(models.RawRow{"C-1", "xyzzy"})
	if mismatch {
		t.Fatal("unexpected shape mismatch")
	}
	if got := rec.GetString("case_id"); got != "C-1" {
		t.Errorf("case_id = %q, want C-1", got)
	}
}

func TestMapRow_ShortRowShapeMismatch(t *testing.T) {
	fm := testFieldMap("a", "b", "c", "d", "e")
	spec := EstablishColumns([]string{"A", "B", "C", "D", "E"}, fm)

	rec, mismatch := spec.MapRow(models.RawRow{"1", "2", "3", "4"})
	if !mismatch {
		t.Fatal("expected shape mismatch for 4 cells against 5 columns")
	}
	if got := rec.GetString("d"); got != "4" {
		t.Errorf("d = %q, want 4", got)
	}
	// Trailing field keeps the explicit empty sentinel, never omitted.
	if got := rec.GetString("e"); got != "" {
		t.Errorf("e = %q, want empty sentinel", got)
	}
	if rec.Schema().Index("e") < 0 {
		t.Error("field e missing from record schema")
	}
}

func TestMapRow_LongRowShapeMismatch(t *testing.T) {
	fm := testFieldMap("a", "b")
	spec := EstablishColumns([]string{"A", "B"}, fm)

	rec, mismatch := spec.MapRow(models.RawRow{"1", "2", "extra"})
	if !mismatch {
		t.Fatal("expected shape mismatch for 3 cells against 2 columns")
	}
	if got := rec.GetString("b"); got != "2" {
		t.Errorf("b = %q, want 2", got)
	}
}

func TestEstablishColumns_NoHeaderPositional(t *testing.T) {
	fm := testFieldMap("case_id", "parties")
	spec := EstablishColumns(nil, fm)

	rec, mismatch := spec.MapRow(models.RawRow{"C-9", "ROE v COE"})
	if mismatch {
		t.Fatal("unexpected shape mismatch")
	}
	if got := rec.GetString("case_id"); got != "C-9" {
		t.Errorf("case_id = %q, want C-9", got)
	}
	if got := rec.GetString("parties"); got != "ROE v COE" {
		t.Errorf("parties = %q, want ROE v COE", got)
	}
}
