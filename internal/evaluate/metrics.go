// Package evaluate backtests trajectory predictions against held-out
// futures and scores them with set, sequence, temporal, and outcome
// metrics.
package evaluate

import "math"

// jaccard returns |a ∩ b| / |a ∪ b| over two distinct-label sets.
// An empty union reports 0 similarity.
func jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	union := len(setB)
	inter := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func toSet(ss []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// lcsLength computes the Longest Common Subsequence length over exact
// element equality, the standard O(m·n) dynamic program. It measures
// ordered similarity while allowing gaps.
func lcsLength(a, b []string) int {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return 0
	}

	prev := make([]int, n+1)
	cur := make([]int, n+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[n]
}

// lcsRatio normalizes LCS length by the longer sequence, yielding [0, 1].
// Symmetric in its arguments. Two empty sequences score 0.
func lcsRatio(a, b []string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 0
	}
	return float64(lcsLength(a, b)) / float64(longer)
}

// timedEvent pairs a label with its day position, abstracting over actual
// events (raw day offsets) and predicted events (anchor-relative deltas).
type timedEvent struct {
	label string
	day   int
}

// temporalResult reports timing error over greedily matched event pairs.
// MAE and RMSE are nil when nothing matched: "no data" must not read as
// "zero error".
type temporalResult struct {
	MAE     *float64
	RMSE    *float64
	Matched int
}

// temporalAccuracy matches actual events to predicted events by exact
// label and scores the day-offset error. For each actual event in order,
// the nearest unconsumed prediction with the same label is consumed.
//
// The matching is greedy, not a minimum-cost assignment: an early actual
// event can claim a prediction that a later event would have matched more
// closely. Kept for compatibility with the established scoring; treat the
// numbers as an approximation.
func temporalAccuracy(actual, predicted []timedEvent) temporalResult {
	byLabel := make(map[string][]int)
	for _, p := range predicted {
		byLabel[p.label] = append(byLabel[p.label], p.day)
	}

	var errs []float64
	for _, a := range actual {
		days := byLabel[a.label]
		if len(days) == 0 {
			continue
		}
		best := 0
		for i, d := range days {
			if abs(d-a.day) < abs(days[best]-a.day) {
				best = i
			}
		}
		errs = append(errs, float64(abs(days[best]-a.day)))
		byLabel[a.label] = append(days[:best], days[best+1:]...)
	}

	if len(errs) == 0 {
		return temporalResult{}
	}

	var sum, sumSq float64
	for _, e := range errs {
		sum += e
		sumSq += e * e
	}
	mae := sum / float64(len(errs))
	rmse := math.Sqrt(sumSq / float64(len(errs)))
	return temporalResult{MAE: &mae, RMSE: &rmse, Matched: len(errs)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// criticalResult reports precision/recall of critical-event prediction
// over distinct label sets. Precision is nil when nothing critical was
// predicted; recall is nil when nothing critical actually happened.
type criticalResult struct {
	Precision      *float64
	Recall         *float64
	ActualCount    int
	PredictedCount int
	TruePositives  int
}

// criticalEvents scores how well the prediction anticipated critical
// events, where "critical" means matching the evaluation critical
// vocabulary. Distinct labels, not occurrence counts.
func criticalEvents(actualCritical, predictedCritical map[string]struct{}) criticalResult {
	tp := 0
	for label := range actualCritical {
		if _, ok := predictedCritical[label]; ok {
			tp++
		}
	}

	res := criticalResult{
		ActualCount:    len(actualCritical),
		PredictedCount: len(predictedCritical),
		TruePositives:  tp,
	}
	if len(predictedCritical) > 0 {
		p := float64(tp) / float64(len(predictedCritical))
		res.Precision = &p
	}
	if len(actualCritical) > 0 {
		r := float64(tp) / float64(len(actualCritical))
		res.Recall = &r
	}
	return res
}
