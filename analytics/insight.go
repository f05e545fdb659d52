package analytics

import (
	"fmt"
	"time"
)

// InsightKind 洞察类型，展示层据此本地化文案
type InsightKind string

const (
	InsightInsufficientData InsightKind = "insufficient_data"
	InsightDominantEmotion  InsightKind = "dominant_emotion"
	InsightHardDay          InsightKind = "hard_day"
	InsightIntensityHigh    InsightKind = "intensity_high"
	InsightIntensityLow     InsightKind = "intensity_low"
	InsightEncouragement    InsightKind = "encouragement"
)

// InsightParams 洞察参数，只填与 Kind 相关的字段
type InsightParams struct {
	Tag              Tag           `json:"tag,omitempty"`
	Percentage       int           `json:"percentage,omitempty"`
	Weekday          *time.Weekday `json:"weekday,omitempty"`
	AverageIntensity float64       `json:"averageIntensity,omitempty"`
	Count            int           `json:"count,omitempty"`
	Required         int           `json:"required,omitempty"`
}

// Insight 模式识别得到的一条结构化观察
type Insight struct {
	Kind   InsightKind   `json:"kind"`
	Params InsightParams `json:"params"`
}

// String 默认英文文案，供命令行和日志使用
func (i Insight) String() string {
	switch i.Kind {
	case InsightInsufficientData:
		return fmt.Sprintf("Keep logging: %d of %d check-ins needed before patterns show up.", i.Params.Count, i.Params.Required)
	case InsightDominantEmotion:
		return fmt.Sprintf("%s shows up in %d%% of recent check-ins.", i.Params.Tag, i.Params.Percentage)
	case InsightHardDay:
		day := "a weekday"
		if i.Params.Weekday != nil {
			day = i.Params.Weekday.String()
		}
		return fmt.Sprintf("%s tends to be harder: %d%% of its check-ins are anxious, sad or angry.", day, i.Params.Percentage)
	case InsightIntensityHigh:
		return fmt.Sprintf("Emotions have been intense lately (average %.1f/5).", i.Params.AverageIntensity)
	case InsightIntensityLow:
		return fmt.Sprintf("Emotions have been mild lately (average %.1f/5).", i.Params.AverageIntensity)
	case InsightEncouragement:
		return "No strong pattern this month. Keep checking in."
	default:
		return string(i.Kind)
	}
}
