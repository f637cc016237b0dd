package extract

import "time"

// docDateLayouts are the formats the results table renders dates in.
var docDateLayouts = []string{
	"Jan 2, 2006, 3:04 PM",
	"Jan 2, 2006",
}

// ParseDocDate parses a table date cell. The second return reports whether
// any layout matched; callers treat unparseable dates as "keep the row".
func ParseDocDate(s string) (time.Time, bool) {
	s = CleanText(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range docDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
