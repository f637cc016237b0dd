package scraper

import (
	"testing"

	"github.com/civicgrab/laredo/config"
)

const primeNGPage = `
<html><body>
<div class="p-datatable">
<table class="p-datatable-table" role="table">
<tbody><tr><td>2026-0001</td></tr></tbody>
</table>
</div>
</body></html>`

func TestMatchAnySelector_Priority(t *testing.T) {
	sel, ok := MatchAnySelector(primeNGPage, config.DefaultRowFallbacks)
	if !ok {
		t.Fatal("no fallback matched the PrimeNG fixture")
	}
	if sel != "table[role='table'] tbody tr" {
		t.Errorf("matched %q, want the first fallback in priority order", sel)
	}
}

func TestMatchAnySelector_SecondCandidateWins(t *testing.T) {
	page := `<html><body><table class="p-datatable-table"><tbody><tr><td>x</td></tr></tbody></table></body></html>`
	sel, ok := MatchAnySelector(page, config.DefaultRowFallbacks)
	if !ok {
		t.Fatal("no fallback matched")
	}
	if sel != "table.p-datatable-table tbody tr" {
		t.Errorf("matched %q", sel)
	}
}

func TestMatchAnySelector_NoMatch(t *testing.T) {
	if sel, ok := MatchAnySelector("<html><body><form id='login'></form></body></html>", config.DefaultRowFallbacks); ok {
		t.Errorf("unexpected match %q on a login page", sel)
	}
}

func TestMatchAnySelector_SkipsBadSelectors(t *testing.T) {
	sel, ok := MatchAnySelector(primeNGPage, []string{"", "[[[", "table[role='table']"})
	if !ok || sel != "table[role='table']" {
		t.Errorf("got %q/%v, want the valid selector to match", sel, ok)
	}
}
