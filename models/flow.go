package models

import (
	"encoding/json"
	"os"
	"time"
)

// FlowStep is one entry in the resolution step log: which step ran, what
// selector it tried, how it went.
type FlowStep struct {
	Event    string `json:"event"`
	Selector string `json:"selector,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
	Count    int    `json:"count,omitempty"`
	Page     int    `json:"page,omitempty"`
	TS       string `json:"ts"`
}

// FlowLog is a write-once debug artifact recording each resolution step of
// a run (selectors tried, timings, outcomes). It is not consumed by any
// downstream component.
type FlowLog struct {
	StartedAt  string     `json:"started_at"`
	County     string     `json:"county"`
	Steps      []FlowStep `json:"steps"`
	FinishedOK bool       `json:"finished_ok"`
	Error      string     `json:"error,omitempty"`
	Records    int        `json:"records"`
	JSONPath   string     `json:"json_path,omitempty"`
	CSVPath    string     `json:"csv_path,omitempty"`
}

// NewFlowLog starts a flow log for the given county slug.
func NewFlowLog(county string) *FlowLog {
	return &FlowLog{
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		County:    county,
		Steps:     []FlowStep{},
	}
}

// Step appends a step, stamping it with the current time.
func (f *FlowLog) Step(step FlowStep) {
	step.TS = time.Now().UTC().Format(time.RFC3339)
	f.Steps = append(f.Steps, step)
}

// Write serializes the flow log to path. Failures are returned rather than
// logged here so the caller can decide how loudly to complain.
func (f *FlowLog) Write(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
