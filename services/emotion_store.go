package services

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// EmotionStore 情绪记录的存取接口，查询结果已按系统和 alter 过滤。
// 写入前由调用方设置 LastModified，为零时实现使用当前时间。
type EmotionStore interface {
	Create(ctx context.Context, rec models.EmotionRecord) error
	// CreateBatch 批量写入，已存在的 ID 跳过，返回实际写入条数。
	// 整批在一个事务中完成，出错时不留下部分写入。
	CreateBatch(ctx context.Context, recs []models.EmotionRecord) (int, error)
	FindRange(ctx context.Context, ownerID, subjectID string, r analytics.Range) ([]models.EmotionRecord, error)
	Latest(ctx context.Context, ownerID, subjectID string) (*models.EmotionRecord, error)
	RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.EmotionRecord, error)
	// FindByOwnerSince 系统下 LastModified 晚于 since 的全部记录，用于客户端增量同步
	FindByOwnerSince(ctx context.Context, ownerID string, since time.Time) ([]models.EmotionRecord, error)
	// ActiveSubjects since 之后有新写入的 alter
	ActiveSubjects(ctx context.Context, since time.Time) ([]models.SubjectRef, error)
}

// GormEmotionStore 基于 MySQL 的实现
type GormEmotionStore struct {
	db *gorm.DB
}

func NewGormEmotionStore(db *gorm.DB) *GormEmotionStore {
	return &GormEmotionStore{db: db}
}

func (s *GormEmotionStore) Create(ctx context.Context, rec models.EmotionRecord) error {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create emotion record: %w", err)
	}
	return nil
}

func (s *GormEmotionStore) CreateBatch(ctx context.Context, recs []models.EmotionRecord) (created int, err error) {
	// 开启事务
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	for i := range recs {
		// 记录不可修改，已存在时直接跳过
		var count int64
		if err := tx.Model(&models.EmotionRecord{}).Where("id = ?", recs[i].ID).Count(&count).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to check emotion record: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := tx.Create(&recs[i]).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to create emotion record: %w", err)
		}
		created++
	}

	// 提交事务
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit emotion records: %w", err)
	}
	return created, nil
}

func (s *GormEmotionStore) FindRange(ctx context.Context, ownerID, subjectID string, r analytics.Range) ([]models.EmotionRecord, error) {
	var recs []models.EmotionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND subject_id = ? AND created_at BETWEEN ? AND ?", ownerID, subjectID, r.Start, r.End).
		Order("created_at asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion records: %w", err)
	}
	return recs, nil
}

func (s *GormEmotionStore) Latest(ctx context.Context, ownerID, subjectID string) (*models.EmotionRecord, error) {
	var rec models.EmotionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND subject_id = ?", ownerID, subjectID).
		Order("created_at desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest emotion: %w", err)
	}
	return &rec, nil
}

func (s *GormEmotionStore) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.EmotionRecord, error) {
	var recs []models.EmotionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent emotions: %w", err)
	}
	return recs, nil
}

func (s *GormEmotionStore) FindByOwnerSince(ctx context.Context, ownerID string, since time.Time) ([]models.EmotionRecord, error) {
	var recs []models.EmotionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND last_modified > ?", ownerID, since).
		Order("last_modified asc, created_at asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion updates: %w", err)
	}
	return recs, nil
}

func (s *GormEmotionStore) ActiveSubjects(ctx context.Context, since time.Time) ([]models.SubjectRef, error) {
	var refs []models.SubjectRef
	err := s.db.WithContext(ctx).
		Model(&models.EmotionRecord{}).
		Distinct("owner_id", "subject_id").
		Where("last_modified >= ?", since).
		Scan(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active subjects: %w", err)
	}
	return refs, nil
}
