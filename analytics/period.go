package analytics

import (
	"fmt"
	"time"
)

// Period 统计周期预设
type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	PeriodYear   Period = "1y"
	PeriodAll    Period = "all"
)

var periodDays = map[Period]int{
	Period7Days:  7,
	Period30Days: 30,
	Period90Days: 90,
	PeriodYear:   365,
	PeriodAll:    9999,
}

// Periods 所有预设，按时长升序
var Periods = []Period{Period7Days, Period30Days, Period90Days, PeriodYear, PeriodAll}

// ParsePeriod 解析周期参数，空字符串视为 7d
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return Period7Days, nil
	}
	p := Period(s)
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("invalid period %q, must be one of: 7d, 30d, 90d, 1y, all", s)
	}
	return p, nil
}

// Days 周期包含的自然日数
func (p Period) Days() int {
	return periodDays[p]
}

// Range 闭区间 [Start, End]
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains 判断时间点是否在区间内
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days 区间覆盖的自然日数
func (r Range) Days() int {
	n := 0
	for d := startOfDay(r.Start, r.Start.Location()); !d.After(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// DayRange 以 now 所在日为最后一天、向前共 days 个自然日的区间
func DayRange(now time.Time, days int, loc *time.Location) Range {
	if days < 1 {
		days = 1
	}
	today := startOfDay(now, loc)
	return Range{
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   today.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

// Preceding 紧挨在 r 之前、长度相同的区间
func (r Range) Preceding(days int) Range {
	return Range{
		Start: r.Start.AddDate(0, 0, -days),
		End:   r.Start.Add(-time.Nanosecond),
	}
}

// Windows 一次报表需要的各个查询区间
type Windows struct {
	Period   Period `json:"period"`
	Current  Range  `json:"current"`
	Previous Range  `json:"previous"`
	Trend    Range  `json:"trend"`
	Patterns Range  `json:"patterns"`
}

// NewWindows 计算当前周期、上一周期、趋势区间（最多 trendMaxDays 天）和模式识别窗口
func NewWindows(now time.Time, p Period, loc *time.Location, trendMaxDays, patternDays int) Windows {
	if loc == nil {
		loc = time.UTC
	}
	days := p.Days()
	current := DayRange(now, days, loc)

	trendDays := days
	if trendMaxDays > 0 && trendDays > trendMaxDays {
		trendDays = trendMaxDays
	}

	return Windows{
		Period:   p,
		Current:  current,
		Previous: current.Preceding(days),
		Trend:    DayRange(now, trendDays, loc),
		Patterns: DayRange(now, patternDays, loc),
	}
}

// Filter 返回落在区间内的记录
func Filter(records []Record, r Range) []Record {
	var out []Record
	for _, rec := range records {
		if r.Contains(rec.CreatedAt) {
			out = append(out, rec)
		}
	}
	return out
}
