package models

import (
	"fmt"
	"time"
)

// CreateEmotionRequest 新增情绪打卡请求
type CreateEmotionRequest struct {
	Emotion   string    `json:"emotion"`
	Emotions  []string  `json:"emotions"`
	Intensity int       `json:"intensity" binding:"required"` // 1 很弱 - 5 很强
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"` // 为空时使用服务器时间
}

// Validate 至少需要一个情绪标签
func (r *CreateEmotionRequest) Validate() error {
	if r.Emotion == "" && len(r.Emotions) == 0 {
		return fmt.Errorf("emotion or emotions is required")
	}
	if r.Intensity < 1 || r.Intensity > 5 {
		return fmt.Errorf("intensity must be between 1 and 5")
	}
	return nil
}

// ConvertToUTC 时间统一转换为 UTC
func (r *CreateEmotionRequest) ConvertToUTC() {
	r.CreatedAt = r.CreatedAt.UTC()
}

// SyncEmotionsRequest 批量导入时的单条记录，ID 由客户端生成
type SyncEmotionsRequest struct {
	ID        string    `json:"id" binding:"required"`
	AlterID   string    `json:"alterId" binding:"required"`
	Emotion   string    `json:"emotion"`
	Emotions  []string  `json:"emotions"`
	Intensity int       `json:"intensity"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *SyncEmotionsRequest) ConvertToUTC() {
	r.CreatedAt = r.CreatedAt.UTC()
}

// HistoryQuery 历史记录查询参数
type HistoryQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (q *HistoryQuery) Validate() error {
	if q.From.IsZero() || q.To.IsZero() {
		return fmt.Errorf("from and to are required")
	}

	// 将时间转换为 UTC
	q.From = q.From.UTC()
	q.To = q.To.UTC()

	if q.From.After(q.To) {
		return fmt.Errorf("from must be before to")
	}
	return nil
}
