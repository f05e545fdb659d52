package analytics

import (
	"math"
	"time"
)

// DetectPatterns 在调用方已过滤好的窗口（默认近 30 天）上按顺序应用规则
func (e *Engine) DetectPatterns(records []Record) []Insight {
	th := e.thresholds
	if len(records) == 0 || len(records) < th.MinPatternRecords {
		return []Insight{{
			Kind:   InsightInsufficientData,
			Params: InsightParams{Count: len(records), Required: th.MinPatternRecords},
		}}
	}

	sorted := canonical(records)
	var insights []Insight

	// 主导情绪
	if tag, count := dominantPrimaryTag(sorted); float64(count)/float64(len(sorted)) > th.DominanceShare {
		insights = append(insights, Insight{
			Kind:   InsightDominantEmotion,
			Params: InsightParams{Tag: tag, Percentage: percent(count, len(sorted))},
		})
	}

	// 最难熬的星期几
	if day, share, ok := e.hardestWeekday(sorted); ok && share > th.HardDayShare {
		insights = append(insights, Insight{
			Kind:   InsightHardDay,
			Params: InsightParams{Weekday: &day, Percentage: int(math.Round(share * 100))},
		})
	}

	// 强度特征
	avg := meanIntensity(sorted)
	switch {
	case avg >= th.HighIntensity:
		insights = append(insights, Insight{
			Kind:   InsightIntensityHigh,
			Params: InsightParams{AverageIntensity: round1(avg)},
		})
	case avg <= th.LowIntensity:
		insights = append(insights, Insight{
			Kind:   InsightIntensityLow,
			Params: InsightParams{AverageIntensity: round1(avg)},
		})
	}

	if len(insights) == 0 {
		insights = append(insights, Insight{Kind: InsightEncouragement})
	}
	return insights
}

// hardestWeekday 负面记录占比最高的星期几，并列时取编号较小的
func (e *Engine) hardestWeekday(records []Record) (time.Weekday, float64, bool) {
	var total, negative [7]int
	for _, r := range records {
		wd := r.CreatedAt.In(e.loc).Weekday()
		total[wd]++
		if negativeTags[r.PrimaryTag()] {
			negative[wd]++
		}
	}

	best := time.Sunday
	bestShare := -1.0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if total[wd] == 0 || total[wd] < e.thresholds.HardDayMinSamples {
			continue
		}
		share := float64(negative[wd]) / float64(total[wd])
		if share > bestShare {
			best, bestShare = wd, share
		}
	}
	if bestShare < 0 {
		return 0, 0, false
	}
	return best, bestShare, true
}
