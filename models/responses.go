package models

import (
	"AlterMoodGo/analytics"
	"time"
)

// EmotionResponse 情绪记录响应结构体
type EmotionResponse struct {
	ID        string    `json:"id"`
	AlterID   string    `json:"alterId"`
	Emotion   string    `json:"emotion"`
	Emotions  []string  `json:"emotions"`
	Intensity int       `json:"intensity"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEmotionResponse 由归一化记录构建响应
func NewEmotionResponse(rec analytics.Record) EmotionResponse {
	emotions := make([]string, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		emotions = append(emotions, string(t))
	}
	return EmotionResponse{
		ID:        rec.ID,
		AlterID:   rec.SubjectID,
		Emotion:   string(rec.PrimaryTag()),
		Emotions:  emotions,
		Intensity: rec.Intensity,
		Note:      rec.Note,
		CreatedAt: rec.CreatedAt,
	}
}

// SyncEmotionsResponse 批量导入结果
type SyncEmotionsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// VocabularyEntry 词表中的一个标签
type VocabularyEntry struct {
	Tag     string `json:"tag"`
	Valence int    `json:"valence"`
}

// VocabularyResponse 词表响应
type VocabularyResponse struct {
	Version int               `json:"version"`
	Tags    []VocabularyEntry `json:"tags"`
}
