package review

import (
	"math"

	"github.com/greywatch/srev/internal/model"
)

// ScoreMethod tags the current scoring formula revision. v2 sizes the
// efficiency penalty on uncached tokens with a 10x cache-read discount;
// v1 penalized raw totals. Bump this on any breaking formula change.
const ScoreMethod = "heuristic-v2"

// cacheReadDiscount weights cache-read tokens in the effective size
// term. Cache reads are billed an order of magnitude cheaper and are
// not controllable spend, so they barely count.
const cacheReadDiscount = 0.1

// ScoreInputs carries everything the score engine consumes.
type ScoreInputs struct {
	Summary model.UsageSummary
	Budget  *model.BudgetResult

	// SourceReliability in [0, 1] reflects how trustworthy the
	// collection path was; the collector supplies it.
	SourceReliability float64
}

// Score computes the four session scores. All outputs are clamped to
// [0, 100] and rounded to two decimals.
func Score(in ScoreInputs) model.ScoreSet {
	u := in.Summary

	eff := 100.0
	effective := float64(u.UncachedTokens()) + cacheReadDiscount*float64(u.CacheReadTokens)
	eff -= math.Min(40, effective/20000*40)
	eff -= math.Min(20, math.Max(0, (u.UncachedAvgPerMessage()-250)/500*20))
	eff -= math.Min(20, float64(u.RetryLoops)*6)
	eff -= math.Min(10, math.Max(0, float64(u.ToolCalls)-15)*0.5)
	eff -= u.RepeatedContextRatio * 10

	if in.Budget != nil {
		adh := in.Budget.Adherence
		if adh.Tokens != nil {
			eff -= math.Min(20, adh.Tokens.Overage/1000*4)
		}
		if adh.Cost != nil {
			eff -= math.Min(10, adh.Cost.Overage*100)
		}
		if adh.Time != nil {
			eff -= math.Min(10, adh.Time.Overage/10*5)
		}
	}
	eff = clamp(eff)

	srel := math.Max(0, math.Min(1, in.SourceReliability))
	rel := 0.8 * srel * 100
	if u.TotalTokens > 0 {
		rel += 20
	}
	rel = clamp(rel)

	quality := clamp(100 - float64(u.RetryLoops)*8 - u.RepeatedContextRatio*25)

	composite := clamp(0.45*quality + 0.35*eff + 0.20*rel)

	confidence := model.ConfidenceLow
	switch {
	case srel >= 0.9 && u.TotalTokens > 10000:
		confidence = model.ConfidenceHigh
	case srel >= 0.75 && u.TotalTokens > 0:
		confidence = model.ConfidenceMedium
	}

	return model.ScoreSet{
		Efficiency:      round2(eff),
		Reliability:     round2(rel),
		QualityEstimate: round2(quality),
		Composite:       round2(composite),
		Confidence:      confidence,
		ScoreMethod:     ScoreMethod,
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
