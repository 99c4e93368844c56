package review

import (
	"strings"
	"testing"

	"github.com/greywatch/srev/internal/model"
)

func TestApplyGate(t *testing.T) {
	tests := []struct {
		name    string
		runType model.RunType
		verdict model.Status
		want    int
	}{
		{"lightweight fail never blocks", model.RunLightweight, model.StatusFail, GatePass},
		{"lightweight pass", model.RunLightweight, model.StatusPass, GatePass},
		{"workflow pass", model.RunWorkflow, model.StatusPass, GatePass},
		{"workflow warn does not block", model.RunWorkflow, model.StatusWarn, GatePass},
		{"workflow fail blocks", model.RunWorkflow, model.StatusFail, GateFail},
		{"production fail blocks", model.RunProduction, model.StatusFail, GateFail},
		{"production warn does not block", model.RunProduction, model.StatusWarn, GatePass},
		{"unknown run type errors", model.RunType("smoke"), model.StatusPass, GateError},
		{"missing verdict errors", model.RunWorkflow, model.Status(""), GateError},
		{"unknown verdict errors", model.RunProduction, model.Status("maybe"), GateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGate(tt.runType, tt.verdict, "session-review-abc123")
			if got.Code != tt.want {
				t.Errorf("ApplyGate(%s, %s) = %d (%s), want %d",
					tt.runType, tt.verdict, got.Code, got.Message, tt.want)
			}
			if got.Message == "" {
				t.Error("gate decision should carry a message")
			}
		})
	}
}

func TestApplyGateMessageNamesReport(t *testing.T) {
	got := ApplyGate(model.RunWorkflow, model.StatusFail, "session-review-dead99")
	if !strings.Contains(got.Message, "session-review-dead99") {
		t.Errorf("message %q should reference the report ID", got.Message)
	}

	got = ApplyGate(model.RunLightweight, model.StatusFail, "")
	if !strings.Contains(got.Message, "unknown") {
		t.Errorf("message %q should fall back to unknown report ID", got.Message)
	}
}
