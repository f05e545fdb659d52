package analytics

// Trend 相邻周期的心情变化方向
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// MoodComparison 本周期与上一周期的平均强度对比
type MoodComparison struct {
	Average         float64 `json:"average"`
	PreviousAverage float64 `json:"previousAverage"`
	Trend           Trend   `json:"trend"`
}

// ComputeMoodAverage 比较两个等长且相邻周期的平均强度；周期是否相邻由调用方保证
func (e *Engine) ComputeMoodAverage(current, previous []Record) MoodComparison {
	avg := round1(meanIntensity(current))
	prev := round1(meanIntensity(previous))

	trend := TrendStable
	switch diff := avg - prev; {
	case diff > e.thresholds.MoodTrendDelta:
		trend = TrendUp
	case diff < -e.thresholds.MoodTrendDelta:
		trend = TrendDown
	}

	return MoodComparison{
		Average:         avg,
		PreviousAverage: prev,
		Trend:           trend,
	}
}
