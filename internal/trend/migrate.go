package trend

import "strconv"

// Legacy ledgers predate run types, uncached-token accounting, and
// verdicts. Migration is header-driven and in memory only: every known
// column is read by name, and missing columns are backfilled from
// compatible legacy columns so no stored value is ever lost or
// rejected. Running migration over already-current rows is a no-op.

// migrateRecords converts raw CSV records (header first) into rows of
// the current schema.
func migrateRecords(records [][]string) []Row {
	if len(records) < 2 {
		return nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[name] = i
	}
	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}

		row := Row{
			Date:             get(rec, "date"),
			Project:          get(rec, "project"),
			Source:           get(rec, "source"),
			RunType:          get(rec, "run_type"),
			SessionID:        get(rec, "session_id"),
			ReportID:         get(rec, "report_id"),
			TotalTokens:      toInt(get(rec, "total_tokens")),
			UncachedTokens:   toInt(get(rec, "uncached_tokens")),
			InputTokens:      toInt(get(rec, "input_tokens")),
			OutputTokens:     toInt(get(rec, "output_tokens")),
			CacheReadTokens:  toInt(get(rec, "cache_read_tokens")),
			ToolCalls:        toInt(get(rec, "tool_calls")),
			RetryLoops:       toInt(get(rec, "retry_loops")),
			Efficiency:       toFloat(get(rec, "efficiency")),
			Reliability:      toFloat(get(rec, "reliability")),
			QualityEstimate:  toFloat(get(rec, "quality_estimate")),
			Composite:        toFloat(get(rec, "composite")),
			EstimatedCostUSD: toFloat(get(rec, "estimated_cost_usd")),
			Verdict:          get(rec, "verdict"),
			ScoreMethod:      get(rec, "score_method"),
		}

		// Backfills for pre-run-type ledgers.
		if _, ok := idx["uncached_tokens"]; !ok {
			row.UncachedTokens = row.TotalTokens
		}
		if row.RunType == "" {
			row.RunType = "workflow"
		}
		if row.ReportID == "" {
			row.ReportID = get(rec, "session_reference_id")
		}

		rows = append(rows, row)
	}

	return rows
}

// toInt parses via float first so legacy values like "1234.0" survive.
func toInt(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

func toFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
