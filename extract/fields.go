package extract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldMap declares the output field set and how source columns feed it.
// The default covers the St. Charles County PrimeNG results table; a YAML
// override file supports other table variants without a rebuild.
type FieldMap struct {
	// Fields is the output field order (before aggregation rewrites it).
	Fields []string `yaml:"fields"`

	// Columns maps normalized header text to an output field. Header cells
	// with no entry are dropped.
	Columns map[string]string `yaml:"columns"`

	// KeyField enables record aggregation: source rows sharing the key
	// collapse into one record. Empty disables aggregation.
	KeyField string `yaml:"key_field"`

	// PartyFields are the source fields whose values accumulate into
	// Party1..N on the aggregated record.
	PartyFields []string `yaml:"party_fields"`

	// DateField is checked against the days-back cutoff when set.
	DateField string `yaml:"date_field"`

	// PagesField is coerced to an integer when possible.
	PagesField string `yaml:"pages_field"`
}

// DefaultFieldMap matches the St. Charles County results table layout.
func DefaultFieldMap() FieldMap {
	fields := []string{
		"Doc Number", "Parties", "Book & Page", "Doc Date", "Recorded Date",
		"Doc Type", "Assoc Doc", "Legal Summary", "Consideration",
		"Additional Party", "Pages",
	}
	columns := make(map[string]string, len(fields))
	for _, f := range fields {
		columns[normalizeHeader(f)] = f
	}
	return FieldMap{
		Fields:      fields,
		Columns:     columns,
		KeyField:    "Doc Number",
		PartyFields: []string{"Parties", "Additional Party"},
		DateField:   "Doc Date",
		PagesField:  "Pages",
	}
}

// LoadFieldMap reads a FieldMap override from a YAML file.
func LoadFieldMap(path string) (FieldMap, error) {
	var fm FieldMap

	file, err := os.Open(path)
	if err != nil {
		return fm, fmt.Errorf("failed to open fields file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&fm); err != nil {
		return fm, fmt.Errorf("failed to parse fields file: %w", err)
	}
	if err := fm.Validate(); err != nil {
		return fm, err
	}
	// Column lookups are done on normalized header text.
	normalized := make(map[string]string, len(fm.Columns))
	for k, v := range fm.Columns {
		normalized[normalizeHeader(k)] = v
	}
	fm.Columns = normalized
	return fm, nil
}

// Validate checks the field map for internal consistency.
func (fm FieldMap) Validate() error {
	if len(fm.Fields) == 0 {
		return fmt.Errorf("fields list is required")
	}
	has := func(name string) bool {
		for _, f := range fm.Fields {
			if f == name {
				return true
			}
		}
		return false
	}
	if fm.KeyField != "" && !has(fm.KeyField) {
		return fmt.Errorf("key_field %q is not in fields", fm.KeyField)
	}
	for _, p := range fm.PartyFields {
		if !has(p) {
			return fmt.Errorf("party_field %q is not in fields", p)
		}
	}
	if fm.DateField != "" && !has(fm.DateField) {
		return fmt.Errorf("date_field %q is not in fields", fm.DateField)
	}
	if fm.PagesField != "" && !has(fm.PagesField) {
		return fmt.Errorf("pages_field %q is not in fields", fm.PagesField)
	}
	return nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(CleanText(s))
}
