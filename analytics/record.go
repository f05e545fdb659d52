package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrNoTags 记录在回退到 PrimaryTag 之后仍没有任何标签
	ErrNoTags = errors.New("record has no emotion tags")
	// ErrIntensityOutOfRange 强度不在 1-5 之间
	ErrIntensityOutOfRange = errors.New("intensity out of range")
)

// RecordError 数据完整性错误，说明上游写入或读取存在问题
type RecordError struct {
	ID  string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("emotion record %s: %v", e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// RawRecord 存储层返回的原始记录，可能只有单个 PrimaryTag
type RawRecord struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"alter_id"`
	OwnerID    string    `json:"system_id"`
	PrimaryTag Tag       `json:"emotion"`
	Tags       []Tag     `json:"emotions,omitempty"`
	Intensity  int       `json:"intensity"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record 归一化后的情绪记录，Tags 保证非空
type Record struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"alterId"`
	OwnerID   string    `json:"systemId"`
	Tags      []Tag     `json:"emotions"`
	Intensity int       `json:"intensity"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PrimaryTag 主情绪，即第一个标签
func (r Record) PrimaryTag() Tag {
	return r.Tags[0]
}

// Normalize 把双表示的原始记录转换为只含标签列表的记录
func Normalize(raw RawRecord) (Record, error) {
	if raw.Intensity < MinIntensity || raw.Intensity > MaxIntensity {
		return Record{}, &RecordError{ID: raw.ID, Err: fmt.Errorf("%w: %d", ErrIntensityOutOfRange, raw.Intensity)}
	}

	var tags []Tag
	for _, t := range raw.Tags {
		if t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 && raw.PrimaryTag != "" {
		tags = []Tag{raw.PrimaryTag}
	}
	if len(tags) == 0 {
		return Record{}, &RecordError{ID: raw.ID, Err: ErrNoTags}
	}

	// 旧数据的主情绪在列表中时提到首位
	if raw.PrimaryTag != "" && tags[0] != raw.PrimaryTag {
		for i, t := range tags {
			if t == raw.PrimaryTag {
				reordered := make([]Tag, 0, len(tags))
				reordered = append(reordered, t)
				reordered = append(reordered, tags[:i]...)
				reordered = append(reordered, tags[i+1:]...)
				tags = reordered
				break
			}
		}
	}

	return Record{
		ID:        raw.ID,
		SubjectID: raw.SubjectID,
		OwnerID:   raw.OwnerID,
		Tags:      tags,
		Intensity: raw.Intensity,
		Note:      raw.Note,
		CreatedAt: raw.CreatedAt,
	}, nil
}

// NormalizeAll 批量归一化，遇到第一条非法记录即返回
func NormalizeAll(raws []RawRecord) ([]Record, error) {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		r, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// canonical 按 CreatedAt、ID 排序后的副本，保证结果与输入顺序无关
func canonical(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
