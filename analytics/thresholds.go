package analytics

// 历史实现沿用下来的阈值，保持行为兼容，可通过 Thresholds 覆盖
const (
	DefaultMoodTrendDelta    = 0.3
	DefaultDominanceShare    = 0.40
	DefaultHardDayShare      = 0.50
	DefaultHardDayMinSamples = 3
	DefaultMinPatternRecords = 5
	DefaultHighIntensity     = 4.0
	DefaultLowIntensity      = 2.0

	DefaultNeutralValence = 3
	DefaultMoodScore      = 50
)

const (
	MinIntensity = 1
	MaxIntensity = 5

	MinValence = 1
	MaxValence = 5
)

// Thresholds 模式识别与趋势判断使用的阈值
type Thresholds struct {
	// MoodTrendDelta 平均强度差超过该值才判定为 up / down
	MoodTrendDelta float64 `json:"moodTrendDelta"`
	// DominanceShare 主导情绪占比下限（不含）
	DominanceShare float64 `json:"dominanceShare"`
	// HardDayShare 某个星期几负面记录占比下限（不含）
	HardDayShare float64 `json:"hardDayShare"`
	// HardDayMinSamples 参与统计的星期几至少需要的记录数
	HardDayMinSamples int `json:"hardDayMinSamples"`
	// MinPatternRecords 少于该数量时只返回“继续记录”
	MinPatternRecords int     `json:"minPatternRecords"`
	HighIntensity     float64 `json:"highIntensity"`
	LowIntensity      float64 `json:"lowIntensity"`
}

// DefaultThresholds 返回默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		MoodTrendDelta:    DefaultMoodTrendDelta,
		DominanceShare:    DefaultDominanceShare,
		HardDayShare:      DefaultHardDayShare,
		HardDayMinSamples: DefaultHardDayMinSamples,
		MinPatternRecords: DefaultMinPatternRecords,
		HighIntensity:     DefaultHighIntensity,
		LowIntensity:      DefaultLowIntensity,
	}
}

// negativeTags 困难日统计使用的负面情绪集合
var negativeTags = map[Tag]bool{
	Anxious: true,
	Sad:     true,
	Angry:   true,
}
