package models

import (
	"encoding/json"
	"testing"
)

func TestRecord_SentinelFill(t *testing.T) {
	schema := NewSchema([]string{"a", "b"})
	rec := NewRecord(schema)
	if got := rec.Get("a"); got != "" {
		t.Errorf("unset field = %v, want empty sentinel", got)
	}
	if rec.Set("nope", "x") {
		t.Error("Set accepted a field outside the schema")
	}
}

func TestRecord_MarshalJSONPreservesOrder(t *testing.T) {
	// Field order deliberately non-alphabetical; plain map marshalling
	// would sort it.
	schema := NewSchema([]string{"z_last", "a_first", "m_mid"})
	rec := NewRecord(schema)
	rec.Set("a_first", "1")
	rec.Set("m_mid", 2)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z_last":"","a_first":"1","m_mid":2}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestRecord_GetString(t *testing.T) {
	schema := NewSchema([]string{"pages"})
	rec := NewRecord(schema)
	rec.Set("pages", 7)
	if got := rec.GetString("pages"); got != "7" {
		t.Errorf("GetString = %q, want 7", got)
	}
}

func TestRunResult_StatusDerivation(t *testing.T) {
	schema := NewSchema([]string{"a"})

	r := NewRunResult("c")
	r.Finish()
	if r.Status != StatusFailed {
		t.Errorf("empty result status = %q, want failed", r.Status)
	}

	r = NewRunResult("c")
	r.Records = []*Record{NewRecord(schema)}
	r.Finish()
	if r.Status != StatusSuccess {
		t.Errorf("status = %q, want success", r.Status)
	}

	r = NewRunResult("c")
	r.Records = []*Record{NewRecord(schema)}
	r.AddFlag(DiagPaginationFault)
	r.Finish()
	if r.Status != StatusPartial {
		t.Errorf("status = %q, want partial", r.Status)
	}
}

func TestRunResult_FlagsDeduplicated(t *testing.T) {
	r := NewRunResult("c")
	r.AddFlag(DiagShapeMismatch)
	r.AddFlag(DiagShapeMismatch)
	if len(r.Flags) != 1 {
		t.Errorf("flags = %v, want one entry", r.Flags)
	}
	if !r.HasFlag(DiagShapeMismatch) {
		t.Error("HasFlag missed a recorded flag")
	}
}

func TestRunResult_DistinctRunIDs(t *testing.T) {
	if NewRunResult("c").RunID == NewRunResult("c").RunID {
		t.Error("two runs shared a run id")
	}
}
