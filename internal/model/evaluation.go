package model

import "fmt"

// RunType is the severity class that selects a threshold table.
type RunType string

// Supported run types, from tightest to loosest limits.
const (
	RunLightweight RunType = "lightweight"
	RunWorkflow    RunType = "workflow"
	RunProduction  RunType = "production"
)

// ParseRunType validates a run type string.
func ParseRunType(s string) (RunType, error) {
	switch RunType(s) {
	case RunLightweight, RunWorkflow, RunProduction:
		return RunType(s), nil
	}
	return "", fmt.Errorf("unknown run type %q (want lightweight, workflow, or production)", s)
}

// Status is the outcome of one check, or the overall verdict.
type Status string

// Check statuses in increasing severity.
const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Worse returns the more severe of two statuses (fail > warn > pass).
func (s Status) Worse(other Status) Status {
	if s == StatusFail || other == StatusFail {
		return StatusFail
	}
	if s == StatusWarn || other == StatusWarn {
		return StatusWarn
	}
	return StatusPass
}

// Check records one monitored metric against its limits.
type Check struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	WarnLimit float64 `json:"warn_limit"`
	FailLimit float64 `json:"fail_limit"`
	Unit      string  `json:"unit"`
	Status    Status  `json:"status"`
}

// Evaluation classifies a session against its run type's thresholds.
type Evaluation struct {
	RunType RunType `json:"run_type"`
	Checks  []Check `json:"checks"`
	Verdict Status  `json:"verdict"`
}
