package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/civicgrab/laredo/models"
)

func sampleResult() *models.RunResult {
	schema := models.NewSchema([]string{"case_id", "parties"})
	a := models.NewRecord(schema)
	a.Set("case_id", "C-1")
	a.Set("parties", "DOE v SMITH")
	b := models.NewRecord(schema)
	b.Set("case_id", "C-2")

	r := models.NewRunResult("test-county")
	r.Records = []*models.Record{a, b}
	r.Finish()
	return r
}

func TestWrite_JSONAndCSV(t *testing.T) {
	dir := t.TempDir()
	jsonPath, csvPath, err := Write(sampleResult(), dir, "test-county", false)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if jsonPath != filepath.Join(dir, "test-county.json") {
		t.Errorf("json path = %q", jsonPath)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output JSON invalid: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["case_id"] != "C-1" {
		t.Errorf("decoded = %v", decoded)
	}
	// Field order in the raw bytes follows the schema.
	if !strings.Contains(string(data), `"case_id": "C-1"`) {
		t.Errorf("json bytes missing expected field: %s", data)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv has %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "case_id" || rows[0][1] != "parties" {
		t.Errorf("csv header = %v", rows[0])
	}
	if rows[2][0] != "C-2" || rows[2][1] != "" {
		t.Errorf("csv row = %v, want sentinel for unset field", rows[2])
	}
}

func TestWrite_SkipCSV(t *testing.T) {
	dir := t.TempDir()
	_, csvPath, err := Write(sampleResult(), dir, "test-county", true)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if csvPath != "" {
		t.Errorf("csv path = %q, want empty", csvPath)
	}
	if _, err := os.Stat(filepath.Join(dir, "test-county.csv")); !os.IsNotExist(err) {
		t.Error("csv file written despite skip flag")
	}
}

func TestWrite_CreatesOutDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, _, err := Write(sampleResult(), dir, "c", true); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}
