// Package export 把分析报表导出为 xlsx 工作簿
package export

import (
	"AlterMoodGo/analytics"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// 工作表名称
const (
	SheetSummary      = "Summary"
	SheetTrend        = "Trend"
	SheetDistribution = "Distribution"
	SheetInsights     = "Insights"
)

// ContentType xlsx 的 MIME 类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteReport 将报表写成四个工作表
func WriteReport(w io.Writer, subjectID string, rep analytics.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetTrend, SheetDistribution, SheetInsights} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	dominant := ""
	if rep.Summary.DominantEmotion != nil {
		dominant = string(*rep.Summary.DominantEmotion)
	}
	summary := [][]interface{}{
		{"Alter", subjectID},
		{"Period", string(rep.Period)},
		{"Total entries", rep.Summary.TotalEntries},
		{"Average intensity", rep.Summary.AvgIntensity},
		{"Dominant emotion", dominant},
		{"Mood score", rep.Summary.MoodScore},
		{"Mood average", rep.Mood.Average},
		{"Previous average", rep.Mood.PreviousAverage},
		{"Trend", string(rep.Mood.Trend)},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	trend := [][]interface{}{{"Date", "Value", "Count"}}
	for _, p := range rep.Trend {
		trend = append(trend, []interface{}{p.Date, p.Value, p.Count})
	}
	if err := writeRows(f, SheetTrend, trend); err != nil {
		return err
	}

	dist := [][]interface{}{{"Emotion", "Count", "Percentage"}}
	for _, s := range rep.Distribution {
		dist = append(dist, []interface{}{string(s.Tag), s.Count, s.Percentage})
	}
	if err := writeRows(f, SheetDistribution, dist); err != nil {
		return err
	}

	insights := [][]interface{}{{"Kind", "Message"}}
	for _, in := range rep.Insights {
		insights = append(insights, []interface{}{string(in.Kind), in.String()})
	}
	if err := writeRows(f, SheetInsights, insights); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// FileName 导出文件名
func FileName(subjectID string, p analytics.Period, day string) string {
	return fmt.Sprintf("emotions-%s-%s-%s.xlsx", subjectID, p, day)
}
