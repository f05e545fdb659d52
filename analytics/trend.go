package analytics

import "time"

// DateLayout 趋势点日期格式
const DateLayout = "2006-01-02"

// TrendPoint 某一天的加权心情分
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

type dailyBucket struct {
	totalScore float64
	count      int
}

// ComputeTrend 按自然日汇总 [periodStart, periodEnd] 内的记录，没有记录的日期补 0
func (e *Engine) ComputeTrend(records []Record, periodStart, periodEnd time.Time) []TrendPoint {
	first := startOfDay(periodStart, e.loc)
	last := startOfDay(periodEnd, e.loc)
	if last.Before(first) {
		return []TrendPoint{}
	}

	var days []string
	buckets := make(map[string]*dailyBucket)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		days = append(days, key)
		buckets[key] = &dailyBucket{}
	}

	for _, r := range canonical(records) {
		b, ok := buckets[r.CreatedAt.In(e.loc).Format(DateLayout)]
		if !ok {
			continue
		}
		b.totalScore += e.entryValence(r) * float64(r.Intensity)
		b.count++
	}

	points := make([]TrendPoint, 0, len(days))
	for _, key := range days {
		b := buckets[key]
		p := TrendPoint{Date: key, Count: b.count}
		if b.count > 0 {
			p.Value = round1(b.totalScore / float64(b.count))
		}
		points = append(points, p)
	}
	return points
}

// startOfDay 返回 t 在 loc 中所在自然日的零点
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
