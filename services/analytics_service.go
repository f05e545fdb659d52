package services

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/config"
	"AlterMoodGo/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// AnalyticsOptions 分析服务的可选依赖
type AnalyticsOptions struct {
	Cache             ReportCache
	CacheTTL          time.Duration
	Metrics           *Metrics
	TrendMaxDays      int
	PatternWindowDays int
	// Now 测试时替换时钟
	Now func() time.Time
}

// AnalyticsService 拉取记录并交给分析引擎，结果按周期缓存
type AnalyticsService struct {
	store        EmotionStore
	engine       *analytics.Engine
	cache        ReportCache
	cacheTTL     time.Duration
	metrics      *Metrics
	trendMaxDays int
	patternDays  int
	now          func() time.Time
	generations  *generations
}

// generations 每个 alter 的失效计数，计算期间发生失效时结果不写缓存。
// 只覆盖本进程内的写入。
type generations struct {
	mu sync.Mutex
	m  map[string]uint64
}

func (g *generations) current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m[key]
}

func (g *generations) bump(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m[key]++
}

func subjectKey(ownerID, subjectID string) string {
	return ownerID + ":" + subjectID
}

func NewAnalyticsService(store EmotionStore, engine *analytics.Engine, opts AnalyticsOptions) *AnalyticsService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TrendMaxDays <= 0 {
		opts.TrendMaxDays = 30
	}
	if opts.PatternWindowDays <= 0 {
		opts.PatternWindowDays = 30
	}
	return &AnalyticsService{
		store:        store,
		engine:       engine,
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		metrics:      opts.Metrics,
		trendMaxDays: opts.TrendMaxDays,
		patternDays:  opts.PatternWindowDays,
		now:          opts.Now,
		generations:  &generations{m: make(map[string]uint64)},
	}
}

// Engine 返回使用中的分析引擎
func (s *AnalyticsService) Engine() *analytics.Engine {
	return s.engine
}

// Windows 以当前时间计算周期的查询区间
func (s *AnalyticsService) Windows(p analytics.Period) analytics.Windows {
	return analytics.NewWindows(s.now(), p, s.engine.Location(), s.trendMaxDays, s.patternDays)
}

// Report 获取某个 alter 在周期内的完整分析报表
func (s *AnalyticsService) Report(ctx context.Context, ownerID, subjectID string, p analytics.Period) (*analytics.Report, error) {
	s.metrics.reportRequested(string(p))
	return s.report(ctx, ownerID, subjectID, p, true)
}

// Refresh 忽略缓存重新计算并写回缓存
func (s *AnalyticsService) Refresh(ctx context.Context, ownerID, subjectID string, p analytics.Period) (*analytics.Report, error) {
	return s.report(ctx, ownerID, subjectID, p, false)
}

func (s *AnalyticsService) report(ctx context.Context, ownerID, subjectID string, p analytics.Period, readCache bool) (*analytics.Report, error) {
	w := s.Windows(p)
	key := ReportKey(ownerID, subjectID, p, w.Current.End.Format(analytics.DateLayout))

	if readCache && s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			// 缓存故障不影响计算
			config.Logger.Warnw("读取报表缓存失败", "key", key, "error", err)
		}
		s.metrics.cacheLookup(ok)
		if ok {
			return cached, nil
		}
	}

	subject := subjectKey(ownerID, subjectID)
	gen := s.generations.current(subject)

	start := time.Now()
	defer s.metrics.observeCompute(start)

	in := analytics.ReportInput{Windows: w}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Current, err = s.fetch(gctx, ownerID, subjectID, w.Current)
		return err
	})
	g.Go(func() (err error) {
		in.Previous, err = s.fetch(gctx, ownerID, subjectID, w.Previous)
		return err
	})
	g.Go(func() (err error) {
		in.Patterns, err = s.fetch(gctx, ownerID, subjectID, w.Patterns)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := s.engine.Report(in)

	if s.cache != nil {
		s.storeReport(ctx, key, subject, gen, &report)
	}

	config.Logger.Debugw("生成分析报表",
		"system_id", ownerID,
		"alter_id", subjectID,
		"period", p,
		"current", len(in.Current),
		"previous", len(in.Previous),
		"patterns", len(in.Patterns),
	)
	return &report, nil
}

// storeReport 只在计算期间没有失效时写缓存；写入后再检查一次，
// 与 Invalidate 交错时删除刚写入的结果
func (s *AnalyticsService) storeReport(ctx context.Context, key, subject string, gen uint64, report *analytics.Report) {
	if s.generations.current(subject) != gen {
		config.Logger.Debugw("计算期间报表已失效，跳过缓存", "key", key)
		return
	}
	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		config.Logger.Warnw("写入报表缓存失败", "key", key, "error", err)
		return
	}
	if s.generations.current(subject) != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			config.Logger.Warnw("清除报表缓存失败", "key", key, "error", err)
		}
	}
}

// History 区间内归一化后的记录
func (s *AnalyticsService) History(ctx context.Context, ownerID, subjectID string, r analytics.Range) ([]analytics.Record, error) {
	return s.fetch(ctx, ownerID, subjectID, r)
}

func (s *AnalyticsService) fetch(ctx context.Context, ownerID, subjectID string, r analytics.Range) ([]analytics.Record, error) {
	rows, err := s.store.FindRange(ctx, ownerID, subjectID, r)
	if err != nil {
		return nil, err
	}
	return s.normalize(rows)
}

func (s *AnalyticsService) normalize(rows []models.EmotionRecord) ([]analytics.Record, error) {
	raws := make([]analytics.RawRecord, 0, len(rows))
	for _, row := range rows {
		raws = append(raws, row.ToRaw())
	}
	records, err := analytics.NormalizeAll(raws)
	if err != nil {
		var recErr *analytics.RecordError
		if errors.As(err, &recErr) {
			s.metrics.integrityError()
			config.Logger.Errorw("存储的情绪记录无效", "id", recErr.ID, "error", recErr.Err)
		}
		return nil, fmt.Errorf("failed to normalize emotion records: %w", err)
	}
	return records, nil
}

// Invalidate 清除某个 alter 当天所有周期的缓存
func (s *AnalyticsService) Invalidate(ctx context.Context, ownerID, subjectID string) {
	if s.cache == nil {
		return
	}
	// 先递增计数，正在进行的计算不会把旧结果写回
	s.generations.bump(subjectKey(ownerID, subjectID))
	day := s.Windows(analytics.Period7Days).Current.End.Format(analytics.DateLayout)
	keys := make([]string, 0, len(analytics.Periods))
	for _, p := range analytics.Periods {
		keys = append(keys, ReportKey(ownerID, subjectID, p, day))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		config.Logger.Warnw("清除报表缓存失败", "system_id", ownerID, "alter_id", subjectID, "error", err)
	}
}

// Trend 周期内的每日趋势
func (s *AnalyticsService) Trend(ctx context.Context, ownerID, subjectID string, p analytics.Period) ([]analytics.TrendPoint, error) {
	rep, err := s.Report(ctx, ownerID, subjectID, p)
	if err != nil {
		return nil, err
	}
	return rep.Trend, nil
}

// Distribution 周期内的情绪分布
func (s *AnalyticsService) Distribution(ctx context.Context, ownerID, subjectID string, p analytics.Period) ([]analytics.TagShare, error) {
	rep, err := s.Report(ctx, ownerID, subjectID, p)
	if err != nil {
		return nil, err
	}
	return rep.Distribution, nil
}

// Mood 与上一周期的平均强度对比
func (s *AnalyticsService) Mood(ctx context.Context, ownerID, subjectID string, p analytics.Period) (analytics.MoodComparison, error) {
	rep, err := s.Report(ctx, ownerID, subjectID, p)
	if err != nil {
		return analytics.MoodComparison{}, err
	}
	return rep.Mood, nil
}

// Patterns 模式识别窗口内的洞察，与周期无关
func (s *AnalyticsService) Patterns(ctx context.Context, ownerID, subjectID string) ([]analytics.Insight, error) {
	rep, err := s.Report(ctx, ownerID, subjectID, analytics.Period7Days)
	if err != nil {
		return nil, err
	}
	return rep.Insights, nil
}

// Summary 周期汇总
func (s *AnalyticsService) Summary(ctx context.Context, ownerID, subjectID string, p analytics.Period) (analytics.Summary, error) {
	rep, err := s.Report(ctx, ownerID, subjectID, p)
	if err != nil {
		return analytics.Summary{}, err
	}
	return rep.Summary, nil
}
