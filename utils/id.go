package utils

import (
	"AlterMoodGo/config"

	"github.com/google/uuid"
)

// GenerateID 生成按时间递增的情绪记录 ID，同一时刻写入的记录按 ID 仍保持写入顺序
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		config.Logger.Warnw("生成 v7 ID 失败，改用随机 ID", "error", err)
		return uuid.NewString()
	}
	return id.String()
}
