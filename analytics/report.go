package analytics

// ReportInput 组成报表所需的三组记录
type ReportInput struct {
	Windows  Windows
	Current  []Record
	Previous []Record
	// Patterns 模式识别窗口内的记录
	Patterns []Record
}

// Report 历史页面一次加载的全部分析结果
type Report struct {
	Period       Period         `json:"period"`
	Trend        []TrendPoint   `json:"trend"`
	Distribution []TagShare     `json:"distribution"`
	Mood         MoodComparison `json:"mood"`
	Insights     []Insight      `json:"insights"`
	Summary      Summary        `json:"summary"`
}

// Report 组合五个分析结果；趋势只使用当前周期中落在趋势区间内的记录
func (e *Engine) Report(in ReportInput) Report {
	return Report{
		Period:       in.Windows.Period,
		Trend:        e.ComputeTrend(in.Current, in.Windows.Trend.Start, in.Windows.Trend.End),
		Distribution: e.ComputeDistribution(in.Current),
		Mood:         e.ComputeMoodAverage(in.Current, in.Previous),
		Insights:     e.DetectPatterns(in.Patterns),
		Summary:      e.ComputeSummary(in.Current),
	}
}

// ReportFromHistory 在内存中按窗口切分一份完整历史后生成报表
func (e *Engine) ReportFromHistory(history []Record, w Windows) Report {
	return e.Report(ReportInput{
		Windows:  w,
		Current:  Filter(history, w.Current),
		Previous: Filter(history, w.Previous),
		Patterns: Filter(history, w.Patterns),
	})
}
