package extract

import (
	"testing"
)

const fixtureTable = `
<html><body>
<table role="table" class="p-datatable-table">
  <thead>
    <tr><th>Doc Number</th><th>Parties</th><th>Doc Date</th></tr>
  </thead>
  <tbody>
    <tr>
      <td>2026-001</td>
      <td><span>SMITH JOHN</span><span class="party-chip">GRANTOR</span></td>
      <td>Aug 27, 2026</td>
    </tr>
    <tr>
      <td>2026-002</td>
      <td>DOE&nbsp;JANE</td>
      <td>Aug 28, 2026</td>
    </tr>
  </tbody>
</table>
<span class="p-paginator-current">1 - 2 of 14</span>
</body></html>`

func TestParseTableHTML(t *testing.T) {
	capture, err := ParseTableHTML(fixtureTable, "table[role='table']")
	if err != nil {
		t.Fatalf("ParseTableHTML failed: %v", err)
	}

	wantHeader := []string{"Doc Number", "Parties", "Doc Date"}
	if len(capture.Header) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", capture.Header, wantHeader)
	}
	for i, h := range wantHeader {
		if capture.Header[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, capture.Header[i], h)
		}
	}

	if len(capture.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(capture.Rows))
	}
	if capture.Rows[0][0] != "2026-001" {
		t.Errorf("row 0 cell 0 = %q, want 2026-001", capture.Rows[0][0])
	}
	// Multi-child party cell keeps name and chip on separate lines.
	if capture.Rows[0][1] != "SMITH JOHN\nGRANTOR" {
		t.Errorf("party cell = %q, want name and chip lines", capture.Rows[0][1])
	}
	// NBSP collapses to a plain space.
	if capture.Rows[1][1] != "DOE JANE" {
		t.Errorf("nbsp cell = %q, want %q", capture.Rows[1][1], "DOE JANE")
	}

	if capture.PagerLabel != "1 - 2 of 14" {
		t.Errorf("pager label = %q, want %q", capture.PagerLabel, "1 - 2 of 14")
	}
}

func TestParseTableHTML_RowSelectorDirect(t *testing.T) {
	capture, err := ParseTableHTML(fixtureTable, "table[role='table'] tbody tr")
	if err != nil {
		t.Fatalf("ParseTableHTML failed: %v", err)
	}
	if len(capture.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(capture.Rows))
	}
}

func TestParseTableHTML_HeaderFromOwnTable(t *testing.T) {
	// The filter panel table comes first in the document; its thead must
	// not seed the results header.
	page := `
<html><body>
<table class="filter-panel">
  <thead><tr><th>Filter</th><th>Value</th></tr></thead>
  <tbody><tr><td>County</td><td>St. Charles</td></tr></tbody>
</table>
<table class="p-datatable-table">
  <thead><tr><th>Doc Number</th><th>Doc Date</th></tr></thead>
  <tbody>
    <tr><td>2026-001</td><td>Aug 27, 2026</td></tr>
  </tbody>
</table>
</body></html>`

	capture, err := ParseTableHTML(page, "table.p-datatable-table")
	if err != nil {
		t.Fatalf("ParseTableHTML failed: %v", err)
	}
	want := []string{"Doc Number", "Doc Date"}
	if len(capture.Header) != len(want) {
		t.Fatalf("header = %v, want %v", capture.Header, want)
	}
	for i, h := range want {
		if capture.Header[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, capture.Header[i], h)
		}
	}
}

func TestParseTableHTML_NoHeaderLeakAcrossTables(t *testing.T) {
	// The matched table has no thead at all; the sibling table's header
	// must not be borrowed.
	page := `
<html><body>
<table class="filter-panel">
  <thead><tr><th>Filter</th><th>Value</th></tr></thead>
</table>
<table class="p-datatable-table">
  <tbody>
    <tr><td>2026-001</td><td>Aug 27, 2026</td></tr>
  </tbody>
</table>
</body></html>`

	capture, err := ParseTableHTML(page, "table.p-datatable-table")
	if err != nil {
		t.Fatalf("ParseTableHTML failed: %v", err)
	}
	if capture.Header != nil {
		t.Errorf("header = %v, want none for a headerless table", capture.Header)
	}
	if len(capture.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(capture.Rows))
	}
}

func TestParseTableHTML_NoMatches(t *testing.T) {
	capture, err := ParseTableHTML("<html><body><p>login please</p></body></html>", "table[role='table']")
	if err != nil {
		t.Fatalf("ParseTableHTML failed: %v", err)
	}
	if len(capture.Rows) != 0 {
		t.Errorf("got %d rows from a page without a table, want 0", len(capture.Rows))
	}
}

func TestRowSelector(t *testing.T) {
	cases := []struct{ in, want string }{
		{"table.p-datatable-table", "table.p-datatable-table tbody tr"},
		{"table[role='table'] tbody tr", "table[role='table'] tbody tr"},
		{"#pn_id_910-table tbody tr", "#pn_id_910-table tbody tr"},
		{"div.grid tr", "div.grid tr"},
	}
	for _, c := range cases {
		if got := RowSelector(c.in); got != c.want {
			t.Errorf("RowSelector(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  a b \n c  "); got != "a b c" {
		t.Errorf("CleanText = %q, want %q", got, "a b c")
	}
}
