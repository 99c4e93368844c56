package review

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/greywatch/srev/internal/model"
)

func sampleInputs() BuildInputs {
	u := model.UsageSummary{
		InputTokens:  20000,
		OutputTokens: 5000,
		Messages:     50,
		ToolCalls:    10,
		RetryLoops:   3,
	}
	u.Normalize()

	return BuildInputs{
		Project:           "checkout",
		Source:            "claude",
		RunType:           model.RunWorkflow,
		SessionsAnalyzed:  2,
		Summary:           u,
		SourceReliability: 0.8,
		Thresholds:        DefaultTables()[model.RunWorkflow],
	}
}

func TestBuildAssemblesReport(t *testing.T) {
	report := Build(sampleInputs())

	if !strings.HasPrefix(report.ReportID, "session-review-") {
		t.Errorf("ReportID = %q, want session-review- prefix", report.ReportID)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
	if report.Budget != nil {
		t.Error("no declared constraints, Budget should be nil")
	}
	if report.Summary.UncachedTokens != 25000 {
		t.Errorf("UncachedTokens = %d, want 25000", report.Summary.UncachedTokens)
	}
	if report.Scores.Efficiency != 32 {
		t.Errorf("Efficiency = %v, want 32", report.Scores.Efficiency)
	}
	if report.Evaluation.Verdict != model.StatusPass {
		t.Errorf("Verdict = %v, want pass (25k uncached under workflow limits)", report.Evaluation.Verdict)
	}
	if len(report.TopTokenDrivers) == 0 {
		t.Error("drivers should never be empty")
	}
	if len(report.Recommendations) == 0 {
		t.Error("recommendations should never be empty")
	}
}

func TestBuildReportIDsAreUnique(t *testing.T) {
	in := sampleInputs()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := Build(in).ReportID
		if seen[id] {
			t.Fatalf("duplicate report ID %q", id)
		}
		seen[id] = true
	}
}

func TestReportJSONOmitsAbsentSections(t *testing.T) {
	report := Build(sampleInputs())

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"budget"`) {
		t.Error("nil budget should be omitted from JSON")
	}
	if strings.Contains(string(data), `"baseline"`) {
		t.Error("nil baseline should be omitted from JSON")
	}

	var back model.Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ReportID != report.ReportID || back.Evaluation.Verdict != report.Evaluation.Verdict {
		t.Error("report did not survive a JSON round trip")
	}
}

func TestMarkdownSections(t *testing.T) {
	in := sampleInputs()
	maxTokens := int64(10000)
	in.Constraints = model.BudgetConstraints{MaxTokens: &maxTokens}

	report := Build(in)
	md := Markdown(report)

	for _, want := range []string{
		"# Session Review Report",
		"## Summary",
		"## Budget",
		"## Scores",
		"## Evaluation (workflow)",
		"## Top Token Drivers",
		"## Recommendations",
		"Token budget exceeded by 15000 tokens.",
		report.ReportID,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "## Baseline") {
		t.Error("no baseline attached, markdown should omit the section")
	}
}
