package services

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/config"
	"AlterMoodGo/models"
	"AlterMoodGo/utils"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	// RecentScanLimit 查询系统最近情绪时扫描的记录数
	RecentScanLimit = 50
	// MaxImportBatch 单次导入的最大条数
	MaxImportBatch = 500
	// SyncLookback 增量同步最多回溯的时间
	SyncLookback = 30 * 24 * time.Hour
)

// ErrInvalidEmotion 请求中的情绪记录不合法
var ErrInvalidEmotion = errors.New("invalid emotion record")

// EmotionService 情绪打卡的写入与查询
type EmotionService struct {
	store     EmotionStore
	vocab     *analytics.Vocabulary
	analytics *AnalyticsService
	metrics   *Metrics
	now       func() time.Time
}

func NewEmotionService(store EmotionStore, analyticsService *AnalyticsService, metrics *Metrics) *EmotionService {
	return &EmotionService{
		store:     store,
		vocab:     analyticsService.Engine().Vocabulary(),
		analytics: analyticsService,
		metrics:   metrics,
		now:       analyticsService.now,
	}
}

// Vocabulary 当前使用的情绪词表
func (s *EmotionService) Vocabulary() *analytics.Vocabulary {
	return s.vocab
}

func (s *EmotionService) checkTags(primary string, tags []string) error {
	if primary != "" && !s.vocab.Contains(analytics.Tag(primary)) {
		return fmt.Errorf("%w: unknown emotion %q", ErrInvalidEmotion, primary)
	}
	for _, t := range tags {
		if t == "" {
			continue
		}
		if !s.vocab.Contains(analytics.Tag(t)) {
			return fmt.Errorf("%w: unknown emotion %q", ErrInvalidEmotion, t)
		}
	}
	return nil
}

func toTags(ss []string) []analytics.Tag {
	tags := make([]analytics.Tag, 0, len(ss))
	for _, s := range ss {
		tags = append(tags, analytics.Tag(s))
	}
	return tags
}

// Add 为某个 alter 新增一条情绪记录
func (s *EmotionService) Add(ctx context.Context, ownerID, subjectID string, req models.CreateEmotionRequest) (analytics.Record, error) {
	if err := req.Validate(); err != nil {
		return analytics.Record{}, fmt.Errorf("%w: %v", ErrInvalidEmotion, err)
	}
	if err := s.checkTags(req.Emotion, req.Emotions); err != nil {
		return analytics.Record{}, err
	}

	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now()
	}
	req.ConvertToUTC()

	rec, err := analytics.Normalize(analytics.RawRecord{
		ID:         utils.GenerateID(),
		SubjectID:  subjectID,
		OwnerID:    ownerID,
		PrimaryTag: analytics.Tag(req.Emotion),
		Tags:       toTags(req.Emotions),
		Intensity:  req.Intensity,
		Note:       req.Note,
		CreatedAt:  req.CreatedAt,
	})
	if err != nil {
		return analytics.Record{}, fmt.Errorf("%w: %v", ErrInvalidEmotion, err)
	}

	row := models.NewEmotionRecord(rec)
	row.LastModified = s.now().UTC()
	if err := s.store.Create(ctx, row); err != nil {
		return analytics.Record{}, err
	}

	s.metrics.ingested("api", 1)
	s.analytics.Invalidate(ctx, ownerID, subjectID)

	config.Logger.Infow("新增情绪记录",
		"system_id", ownerID,
		"alter_id", subjectID,
		"id", rec.ID,
		"emotion", rec.PrimaryTag(),
	)
	return rec, nil
}

// Import 导入客户端离线产生的记录，整批校验通过后才写入，已存在的 ID 跳过
func (s *EmotionService) Import(ctx context.Context, ownerID string, reqs []models.SyncEmotionsRequest) (models.SyncEmotionsResponse, error) {
	if len(reqs) > MaxImportBatch {
		return models.SyncEmotionsResponse{}, fmt.Errorf("%w: at most %d records per import", ErrInvalidEmotion, MaxImportBatch)
	}

	rows := make([]models.EmotionRecord, 0, len(reqs))
	subjects := make(map[string]bool)
	for i := range reqs {
		req := &reqs[i]
		if err := s.checkTags(req.Emotion, req.Emotions); err != nil {
			return models.SyncEmotionsResponse{}, fmt.Errorf("record %s: %w", req.ID, err)
		}
		if req.CreatedAt.IsZero() {
			return models.SyncEmotionsResponse{}, fmt.Errorf("%w: record %s has no createdAt", ErrInvalidEmotion, req.ID)
		}
		req.ConvertToUTC()

		rec, err := analytics.Normalize(analytics.RawRecord{
			ID:         req.ID,
			SubjectID:  req.AlterID,
			OwnerID:    ownerID,
			PrimaryTag: analytics.Tag(req.Emotion),
			Tags:       toTags(req.Emotions),
			Intensity:  req.Intensity,
			Note:       req.Note,
			CreatedAt:  req.CreatedAt,
		})
		if err != nil {
			return models.SyncEmotionsResponse{}, fmt.Errorf("%w: %v", ErrInvalidEmotion, err)
		}
		rows = append(rows, models.NewEmotionRecord(rec))
		subjects[req.AlterID] = true
	}

	if len(rows) == 0 {
		return models.SyncEmotionsResponse{}, nil
	}

	// 离线记录的 createdAt 可能早于其他设备的上次同步，增量同步以写入时间为准
	modified := s.now().UTC()
	for i := range rows {
		rows[i].LastModified = modified
	}

	created, err := s.store.CreateBatch(ctx, rows)
	if err != nil {
		return models.SyncEmotionsResponse{}, err
	}

	s.metrics.ingested("import", created)
	for subjectID := range subjects {
		s.analytics.Invalidate(ctx, ownerID, subjectID)
	}

	config.Logger.Infow("导入情绪记录",
		"system_id", ownerID,
		"imported", created,
		"skipped", len(rows)-created,
	)
	return models.SyncEmotionsResponse{Imported: created, Skipped: len(rows) - created}, nil
}

// Latest 某个 alter 最近一条记录，没有记录时返回 ErrNotFound
func (s *EmotionService) Latest(ctx context.Context, ownerID, subjectID string) (analytics.Record, error) {
	row, err := s.store.Latest(ctx, ownerID, subjectID)
	if err != nil {
		return analytics.Record{}, err
	}
	records, err := s.analytics.normalize([]models.EmotionRecord{*row})
	if err != nil {
		return analytics.Record{}, err
	}
	return records[0], nil
}

// SystemRecent 系统内每个 alter 的最近一条记录，只在最近 RecentScanLimit 条中查找
func (s *EmotionService) SystemRecent(ctx context.Context, ownerID string) (map[string]analytics.Record, error) {
	rows, err := s.store.RecentByOwner(ctx, ownerID, RecentScanLimit)
	if err != nil {
		return nil, err
	}
	records, err := s.analytics.normalize(rows)
	if err != nil {
		return nil, err
	}

	// 按时间倒序，保留每个 alter 的第一条
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	latest := make(map[string]analytics.Record)
	for _, rec := range records {
		if _, ok := latest[rec.SubjectID]; !ok {
			latest[rec.SubjectID] = rec
		}
	}
	return latest, nil
}

// History 区间内的记录，按时间升序
func (s *EmotionService) History(ctx context.Context, ownerID, subjectID string, from, to time.Time) ([]analytics.Record, error) {
	return s.analytics.History(ctx, ownerID, subjectID, analytics.Range{Start: from, End: to})
}

// Updates 自 since 之后写入服务端的记录，最多回溯 SyncLookback。
// 返回的 syncedAt 是查询开始时的服务端时间，客户端下次以它作为 since。
func (s *EmotionService) Updates(ctx context.Context, ownerID string, since time.Time) (records []analytics.Record, syncedAt time.Time, err error) {
	syncedAt = s.now().UTC()
	if floor := syncedAt.Add(-SyncLookback); since.Before(floor) {
		since = floor
	}
	rows, err := s.store.FindByOwnerSince(ctx, ownerID, since)
	if err != nil {
		return nil, time.Time{}, err
	}
	records, err = s.analytics.normalize(rows)
	if err != nil {
		return nil, time.Time{}, err
	}
	return records, syncedAt, nil
}
