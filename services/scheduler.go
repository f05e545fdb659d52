package services

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/config"
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// DigestScheduler 定时为最近活跃的 alter 预先计算报表
type DigestScheduler struct {
	scheduler gocron.Scheduler
	store     EmotionStore
	analytics *AnalyticsService
	metrics   *Metrics
	interval  time.Duration
	// Lookback 多久内有记录算活跃
	Lookback time.Duration
	// Periods 需要预热的周期
	Periods []analytics.Period
}

func NewDigestScheduler(store EmotionStore, analyticsService *AnalyticsService, metrics *Metrics, interval time.Duration) (*DigestScheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &DigestScheduler{
		scheduler: s,
		store:     store,
		analytics: analyticsService,
		metrics:   metrics,
		interval:  interval,
		Lookback:  24 * time.Hour,
		Periods:   []analytics.Period{analytics.Period7Days, analytics.Period30Days},
	}, nil
}

// Start 注册任务并启动调度器
func (d *DigestScheduler) Start() error {
	_, err := d.scheduler.NewJob(
		gocron.DurationJob(d.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), d.interval)
			defer cancel()
			if _, err := d.RunOnce(ctx); err != nil {
				config.Logger.Errorw("报表预热失败", "error", err)
			}
		}),
		gocron.WithName("insight-digest"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register digest job: %w", err)
	}

	d.scheduler.Start()
	config.Logger.Infow("报表预热任务已启动", "interval", d.interval.String())
	return nil
}

// RunOnce 执行一次预热，返回处理的 alter 数
func (d *DigestScheduler) RunOnce(ctx context.Context) (int, error) {
	since := d.analytics.now().Add(-d.Lookback)
	refs, err := d.store.ActiveSubjects(ctx, since)
	if err != nil {
		d.metrics.digestRun("error", 0)
		return 0, err
	}

	refreshed := 0
	for _, ref := range refs {
		for _, p := range d.Periods {
			if _, err := d.analytics.Refresh(ctx, ref.OwnerID, ref.SubjectID, p); err != nil {
				// 单个 alter 失败不影响其他
				config.Logger.Warnw("预热报表失败",
					"system_id", ref.OwnerID,
					"alter_id", ref.SubjectID,
					"period", p,
					"error", err,
				)
				continue
			}
		}
		refreshed++

		if ctx.Err() != nil {
			d.metrics.digestRun("timeout", refreshed)
			return refreshed, ctx.Err()
		}
	}

	d.metrics.digestRun("ok", refreshed)
	config.Logger.Infow("报表预热完成", "subjects", refreshed)
	return refreshed, nil
}

// Shutdown 停止调度器并等待运行中的任务
func (d *DigestScheduler) Shutdown() error {
	return d.scheduler.Shutdown()
}
