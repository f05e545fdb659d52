package models

import (
	"AlterMoodGo/analytics"
	"time"

	"gorm.io/datatypes"
)

// EmotionRecord 情绪记录模型，写入后不再修改
type EmotionRecord struct {
	ID        string                      `gorm:"type:varchar(50);primaryKey" json:"id"`
	OwnerID   string                      `gorm:"type:varchar(50);index:idx_emotion_owner_subject_created,priority:1;index:idx_emotion_owner_modified,priority:1" json:"systemId"`
	SubjectID string                      `gorm:"type:varchar(50);index:idx_emotion_owner_subject_created,priority:2" json:"alterId"`
	Emotion   string                      `gorm:"type:varchar(30)" json:"emotion"` // 单标签旧数据
	Emotions  datatypes.JSONSlice[string] `gorm:"type:json" json:"emotions"`
	Intensity int                         `json:"intensity"`
	Note      string                      `gorm:"type:text" json:"note"`
	CreatedAt time.Time                   `gorm:"index:idx_emotion_owner_subject_created,priority:3" json:"createdAt"`

	// LastModified 服务端写入时间，增量同步按它查询
	LastModified time.Time `gorm:"autoCreateTime;index:idx_emotion_owner_modified,priority:2" json:"lastModified"`
}

// 表名
func (EmotionRecord) TableName() string {
	return "emotion_records"
}

// ToRaw 转换为分析引擎的原始记录
func (r EmotionRecord) ToRaw() analytics.RawRecord {
	tags := make([]analytics.Tag, 0, len(r.Emotions))
	for _, e := range r.Emotions {
		tags = append(tags, analytics.Tag(e))
	}
	return analytics.RawRecord{
		ID:         r.ID,
		SubjectID:  r.SubjectID,
		OwnerID:    r.OwnerID,
		PrimaryTag: analytics.Tag(r.Emotion),
		Tags:       tags,
		Intensity:  r.Intensity,
		Note:       r.Note,
		CreatedAt:  r.CreatedAt,
	}
}

// NewEmotionRecord 由归一化记录构建存储模型，Emotion 字段保存主情绪
func NewEmotionRecord(rec analytics.Record) EmotionRecord {
	emotions := make([]string, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		emotions = append(emotions, string(t))
	}
	return EmotionRecord{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		SubjectID: rec.SubjectID,
		Emotion:   string(rec.PrimaryTag()),
		Emotions:  datatypes.JSONSlice[string](emotions),
		Intensity: rec.Intensity,
		Note:      rec.Note,
		CreatedAt: rec.CreatedAt,
	}
}

// SubjectRef 一个系统下的某个 alter
type SubjectRef struct {
	OwnerID   string `json:"systemId"`
	SubjectID string `json:"alterId"`
}
