package analytics

import "math"

// Summary 周期汇总
type Summary struct {
	TotalEntries    int     `json:"totalEntries"`
	AvgIntensity    float64 `json:"avgIntensity"`
	DominantEmotion *Tag    `json:"dominantEmotion"`
	MoodScore       int     `json:"moodScore"`
}

// ComputeSummary 计算记录数、平均强度、主导情绪和 0-100 心情分
func (e *Engine) ComputeSummary(records []Record) Summary {
	if len(records) == 0 {
		return Summary{MoodScore: DefaultMoodScore}
	}

	sorted := canonical(records)
	dominant, _ := dominantPrimaryTag(sorted)

	valenceSum := 0
	for _, r := range sorted {
		valenceSum += e.vocab.Valence(r.PrimaryTag())
	}
	avgValence := float64(valenceSum) / float64(len(sorted))

	score := int(math.Round((avgValence - 1) / 4 * 100))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return Summary{
		TotalEntries:    len(sorted),
		AvgIntensity:    round1(meanIntensity(sorted)),
		DominantEmotion: &dominant,
		MoodScore:       score,
	}
}
