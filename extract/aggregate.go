package extract

import (
	"fmt"
	"strconv"
	"time"

	"github.com/civicgrab/laredo/models"
)

// Aggregator collapses source rows that share the key field into single
// records, spreading their parties across Party1..N. The results table
// repeats a document across rows, one party per row; the output wants one
// record per document.
type Aggregator struct {
	fm         FieldMap
	countySlug string
	maxParties int
	daysBack   int
	now        func() time.Time
}

// NewAggregator builds an Aggregator for the given field map.
func NewAggregator(fm FieldMap, countySlug string, maxParties, daysBack int) *Aggregator {
	return &Aggregator{
		fm:         fm,
		countySlug: countySlug,
		maxParties: maxParties,
		daysBack:   daysBack,
		now:        time.Now,
	}
}

// Enabled reports whether the field map asks for aggregation at all.
func (a *Aggregator) Enabled() bool {
	return a.fm.KeyField != ""
}

// OutputSchema is the post-aggregation field set: id, the key field,
// Party1..N, then the remaining fields in their declared order.
func (a *Aggregator) OutputSchema() *models.Schema {
	fields := []string{"id", a.fm.KeyField}
	for i := 1; i <= a.maxParties; i++ {
		fields = append(fields, fmt.Sprintf("Party%d", i))
	}
	for _, f := range a.fm.Fields {
		if f == a.fm.KeyField || a.isPartyField(f) {
			continue
		}
		fields = append(fields, f)
	}
	return models.NewSchema(fields)
}

// Apply filters and aggregates mapped records, preserving first-seen order.
// The returned skip count covers rows dropped by the days-back cutoff and
// rows with an empty key.
func (a *Aggregator) Apply(records []*models.Record) ([]*models.Record, int) {
	skipped := 0

	kept := make([]*models.Record, 0, len(records))
	for _, rec := range records {
		if a.tooOld(rec) {
			skipped++
			continue
		}
		kept = append(kept, rec)
	}

	if !a.Enabled() {
		return kept, skipped
	}

	schema := a.OutputSchema()
	var order []string
	bucket := make(map[string]*models.Record)
	parties := make(map[string][]string)

	for _, rec := range kept {
		key := rec.GetString(a.fm.KeyField)
		if key == "" {
			skipped++
			continue
		}

		out, seen := bucket[key]
		if !seen {
			out = models.NewRecord(schema)
			out.Set("id", fmt.Sprintf("%s-%d", a.countySlug, len(order)+1))
			out.Set(a.fm.KeyField, key)
			bucket[key] = out
			order = append(order, key)
		}

		// First non-empty value wins for every plain field.
		for _, f := range a.fm.Fields {
			if f == a.fm.KeyField || a.isPartyField(f) {
				continue
			}
			v := rec.GetString(f)
			if v == "" {
				continue
			}
			if f == a.fm.PagesField {
				a.mergePages(out, f, v)
				continue
			}
			if out.GetString(f) == "" {
				out.Set(f, v)
			}
		}

		for _, pf := range a.fm.PartyFields {
			p := NormalizeParty(rec.GetString(pf))
			if p == "" {
				continue
			}
			if !contains(parties[key], p) {
				parties[key] = append(parties[key], p)
			}
		}
	}

	out := make([]*models.Record, 0, len(order))
	for _, key := range order {
		rec := bucket[key]
		for i, p := range parties[key] {
			if i >= a.maxParties {
				break
			}
			rec.Set(fmt.Sprintf("Party%d", i+1), p)
		}
		out = append(out, rec)
	}
	return out, skipped
}

// mergePages merges a page-count cell into the aggregate. The first
// parseable count wins as an int; a non-numeric placeholder captured
// earlier is replaced once a later duplicate row carries a real count.
func (a *Aggregator) mergePages(out *models.Record, field, v string) {
	if n, err := strconv.Atoi(CleanText(v)); err == nil {
		if _, isInt := out.Get(field).(int); !isInt {
			out.Set(field, n)
		}
		return
	}
	if out.GetString(field) == "" {
		out.Set(field, v)
	}
}

func (a *Aggregator) tooOld(rec *models.Record) bool {
	if a.daysBack <= 0 || a.fm.DateField == "" {
		return false
	}
	t, ok := ParseDocDate(rec.GetString(a.fm.DateField))
	if !ok {
		return false
	}
	cutoff := a.now().UTC().AddDate(0, 0, -a.daysBack)
	y, m, d := cutoff.Date()
	cutoffDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return t.Before(cutoffDay)
}

func (a *Aggregator) isPartyField(name string) bool {
	for _, p := range a.fm.PartyFields {
		if p == name {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
