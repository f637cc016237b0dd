package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/civicgrab/laredo/models"
)

// pagerLabelSelectors locate the pager's "page X of Y" style label, used as
// part of the page fingerprint.
var pagerLabelSelectors = []string{
	".p-paginator-current",
	".p-paginator-pages .p-highlight",
}

// ParseTableHTML extracts header cells, data rows and the pager label from
// rendered markup. rowSelector may target either the rows themselves or the
// table element; in the latter case rows are resolved as "<sel> tbody tr".
//
// All browser interaction happens before this point: parsing captured HTML
// offline keeps row extraction testable against static fixtures.
func ParseTableHTML(rawHTML, rowSelector string) (models.PageCapture, error) {
	var capture models.PageCapture

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return capture, err
	}

	rows := doc.Find(RowSelector(rowSelector))
	rows.Each(func(_ int, row *goquery.Selection) {
		// Header rows can show up inside tbody on some PrimeNG variants.
		if row.Find("th").Length() > 0 && row.Find("td").Length() == 0 {
			if capture.Header == nil {
				capture.Header = cellTexts(row, "th")
			}
			return
		}
		cells := cellTexts(row, "td")
		if len(cells) == 0 {
			return
		}
		capture.Rows = append(capture.Rows, models.RawRow(cells))
	})

	if capture.Header == nil {
		// Take the thead from the table the rows belong to; a document-wide
		// lookup could pick up a filter panel or layout table instead. Only
		// fall back to the whole document when no rows matched at all.
		head := rows.First().Closest("table").Find("thead tr").First()
		if rows.Length() == 0 {
			head = doc.Find("thead tr").First()
		}
		if head.Length() > 0 {
			capture.Header = cellTexts(head, "th")
		}
	}

	for _, sel := range pagerLabelSelectors {
		if label := CleanText(doc.Find(sel).First().Text()); label != "" {
			capture.PagerLabel = label
			break
		}
	}

	return capture, nil
}

// RowSelector normalizes a configured selector to one matching rows. A
// selector already containing "tbody" or ending in "tr" is used as-is.
func RowSelector(sel string) string {
	if strings.Contains(sel, "tbody") || strings.HasSuffix(strings.TrimSpace(sel), "tr") {
		return sel
	}
	return sel + " tbody tr"
}

func cellTexts(row *goquery.Selection, tag string) []string {
	var cells []string
	row.Find(tag).Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cellText(cell))
	})
	return cells
}

// cellText renders a cell's visible text. Block-level children (spans,
// chips) are joined with newlines so downstream party parsing can tell the
// name apart from its role chip.
func cellText(cell *goquery.Selection) string {
	children := cell.Children()
	if children.Length() > 1 {
		var parts []string
		children.Each(func(_ int, child *goquery.Selection) {
			if t := CleanText(child.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}
	return CleanText(cell.Text())
}

// CleanText trims a text node: NBSPs become spaces, inner whitespace runs
// collapse, outer whitespace is dropped.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
