package recommend

import "sort"

// SelectTopStrategies ranks scored strategies and trims the list once the
// cumulative value impact of the leaders reaches the configured cap.
// The input slice is not modified.
func SelectTopStrategies(scored []ScoredStrategy, limits Limits, requestedCount int) []ScoredStrategy {
	if len(scored) == 0 {
		return []ScoredStrategy{}
	}
	limits = limits.orDefault()

	sorted := make([]ScoredStrategy, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	count := limits.DefaultCount
	if requestedCount > 0 {
		count = requestedCount
	}

	walk := min(len(sorted), limits.MaxCount)
	cumulative := 0.0
	for i := 0; i < walk; i++ {
		cumulative += sorted[i].Strategy.ValueImpactPercent
		if cumulative >= limits.MaxCumulativeImpact {
			count = i + 1
			break
		}
	}

	count = max(limits.MinCount, count)
	count = min(count, limits.MaxCount, len(sorted))
	return sorted[:count]
}
