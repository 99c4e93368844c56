package trend

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/greywatch/srev/internal/model"
)

// baselineWindow bounds how many recent comparable sessions feed the
// baseline medians.
const baselineWindow = 5

// Current holds the metrics of the session being compared. The caller
// computes the baseline before appending the session's own row, so the
// row under evaluation never contaminates its baseline.
type Current struct {
	UncachedTokens int64
	CostUSD        float64
	Efficiency     float64
}

// Baseline computes the delta of the current session against the median
// of the most recent ≤5 rows matching (project, source, run_type).
// It returns nil when no matching history exists.
func Baseline(history []Row, project, source string, runType model.RunType, cur Current) *model.BaselineDelta {
	var matched []Row
	for _, r := range history {
		if r.Project == project && r.Source == source && r.RunType == string(runType) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	if len(matched) > baselineWindow {
		matched = matched[len(matched)-baselineWindow:]
	}

	tokens := make([]float64, len(matched))
	costs := make([]float64, len(matched))
	effs := make([]float64, len(matched))
	for i, r := range matched {
		tokens[i] = float64(r.UncachedTokens)
		costs[i] = r.EstimatedCostUSD
		effs[i] = r.Efficiency
	}

	return &model.BaselineDelta{
		SampleSize:     len(matched),
		UncachedTokens: metricDelta(float64(cur.UncachedTokens), median(tokens)),
		CostUSD:        metricDelta(cur.CostUSD, median(costs)),
		Efficiency:     metricDelta(cur.Efficiency, median(effs)),
	}
}

func median(xs []float64) float64 {
	sort.Float64s(xs)
	return stat.Quantile(0.5, stat.LinInterp, xs, nil)
}

func metricDelta(current, med float64) model.MetricDelta {
	d := model.MetricDelta{
		Current: current,
		Median:  round2(med),
		Delta:   round2(current - med),
	}
	if med != 0 {
		d.DeltaPct = round2((current - med) / med * 100)
	}
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
