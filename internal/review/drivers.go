package review

import (
	"fmt"
	"sort"

	"github.com/greywatch/srev/internal/model"
)

const maxDrivers = 5

// AttributeDrivers ranks the usage sub-factors by estimated token
// impact. The result is never empty: "session size" is always a
// candidate, and even a fully silent summary yields an explicit
// no-dominant-driver placeholder rather than a zero-length list.
func AttributeDrivers(u model.UsageSummary) []model.Driver {
	type candidate struct {
		label   string
		impact  float64
		details string
	}

	uncached := u.UncachedTokens()
	candidates := []candidate{{
		label:  "Session size",
		impact: float64(uncached),
		details: fmt.Sprintf(
			"Uncached tokens were %d, which is the primary overall cost driver.", uncached),
	}}

	if u.CacheReadTokens > 0 {
		candidates = append(candidates, candidate{
			label:  "Cache read volume",
			impact: cacheReadDiscount * float64(u.CacheReadTokens),
			details: fmt.Sprintf(
				"Read %d cached tokens; heavily discounted but nonzero spend.", u.CacheReadTokens),
		})
	}

	if avg := u.UncachedAvgPerMessage(); avg > 400 {
		weight := float64(u.Messages) * 0.2
		if weight < 1 {
			weight = 1
		}
		candidates = append(candidates, candidate{
			label:  "High tokens per message",
			impact: (avg - 400) * weight,
			details: fmt.Sprintf(
				"Average uncached tokens/message was %.1f; longer turns increase cumulative spend.", avg),
		})
	}

	if u.RetryLoops > 0 {
		candidates = append(candidates, candidate{
			label:  "Retry/rewrite loops",
			impact: float64(u.RetryLoops) * 350,
			details: fmt.Sprintf(
				"Detected %d retry-like turns, which likely repeated context and output.", u.RetryLoops),
		})
	}

	if u.ToolCalls > 20 {
		candidates = append(candidates, candidate{
			label:  "High tool-call volume",
			impact: float64(u.ToolCalls-20) * 120,
			details: fmt.Sprintf(
				"Detected %d tool-call markers; orchestration overhead can amplify total tokens.", u.ToolCalls),
		})
	}

	if u.RepeatedContextRatio > 0.15 {
		candidates = append(candidates, candidate{
			label:  "Repeated context",
			impact: u.RepeatedContextRatio * float64(u.TotalTokens) * 0.4,
			details: fmt.Sprintf(
				"Repeated-context ratio was %.2f; repeated prompts likely inflated usage.", u.RepeatedContextRatio),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].impact > candidates[j].impact
	})
	if len(candidates) > maxDrivers {
		candidates = candidates[:maxDrivers]
	}

	drivers := make([]model.Driver, 0, len(candidates))
	for i, c := range candidates {
		impact := int64(c.impact)
		if impact < 0 {
			impact = 0
		}
		drivers = append(drivers, model.Driver{
			Rank:                 i + 1,
			Label:                c.label,
			EstimatedTokenImpact: impact,
			Details:              c.details,
		})
	}

	if len(drivers) == 0 {
		drivers = []model.Driver{{
			Rank:    1,
			Label:   "No dominant driver detected",
			Details: "Artifacts had limited usage detail; collect richer session logs for better attribution.",
		}}
	}

	return drivers
}
