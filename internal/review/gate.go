package review

import (
	"fmt"

	"github.com/greywatch/srev/internal/model"
)

// Gate exit codes, matched by CI configurations.
const (
	GatePass  = 0
	GateFail  = 1
	GateError = 2
)

// GateDecision is the CI gating outcome for one report.
type GateDecision struct {
	Code    int
	Message string
}

// ApplyGate applies the CI gating policy to a report's verdict:
// lightweight runs never block, workflow and production runs block on a
// fail verdict, and a missing or unknown verdict is a gate error.
func ApplyGate(runType model.RunType, verdict model.Status, reportID string) GateDecision {
	if reportID == "" {
		reportID = "unknown"
	}

	switch runType {
	case model.RunLightweight:
		v := string(verdict)
		if v == "" {
			v = "unknown"
		}
		return GateDecision{
			Code:    GatePass,
			Message: fmt.Sprintf("lightweight run is non-blocking (report=%s, verdict=%s)", reportID, v),
		}
	case model.RunWorkflow, model.RunProduction:
	default:
		return GateDecision{
			Code:    GateError,
			Message: fmt.Sprintf("unsupported run_type=%s in report=%s", runType, reportID),
		}
	}

	switch verdict {
	case model.StatusFail:
		return GateDecision{
			Code:    GateFail,
			Message: fmt.Sprintf("FAIL: run_type=%s, verdict=fail, report=%s", runType, reportID),
		}
	case model.StatusPass, model.StatusWarn:
		return GateDecision{
			Code:    GatePass,
			Message: fmt.Sprintf("PASS: run_type=%s, verdict=%s, report=%s", runType, verdict, reportID),
		}
	}

	return GateDecision{
		Code:    GateError,
		Message: fmt.Sprintf("missing/invalid verdict for run_type=%s, report=%s", runType, reportID),
	}
}
