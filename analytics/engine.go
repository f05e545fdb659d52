// Package analytics 情绪分析引擎：趋势、分布、心情对比、模式识别与汇总。
//
// 引擎内的函数都是纯函数，不读取系统时间、不持有可变状态，可以并发调用。
package analytics

import (
	"math"
	"time"
)

// Engine 持有词表、阈值和计算日期边界所用的时区
type Engine struct {
	vocab      *Vocabulary
	thresholds Thresholds
	loc        *time.Location
}

// Option 引擎配置项
type Option func(*Engine)

// WithVocabulary 使用自定义词表
func WithVocabulary(v *Vocabulary) Option {
	return func(e *Engine) {
		if v != nil {
			e.vocab = v
		}
	}
}

// WithThresholds 覆盖默认阈值
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithLocation 设置按自然日分桶时使用的时区
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New 创建引擎，默认使用内置词表、默认阈值和 UTC
func New(opts ...Option) *Engine {
	e := &Engine{
		vocab:      DefaultVocabulary(),
		thresholds: DefaultThresholds(),
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary 引擎使用的词表
func (e *Engine) Vocabulary() *Vocabulary { return e.vocab }

// Thresholds 引擎使用的阈值
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Location 引擎使用的时区
func (e *Engine) Location() *time.Location { return e.loc }

// entryValence 记录所有标签效价的平均值
func (e *Engine) entryValence(r Record) float64 {
	sum := 0
	for _, t := range r.Tags {
		sum += e.vocab.Valence(t)
	}
	return float64(sum) / float64(len(r.Tags))
}

func meanIntensity(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.Intensity
	}
	return float64(sum) / float64(len(records))
}

// dominantPrimaryTag 出现次数最多的主情绪，并列时取最早出现的
func dominantPrimaryTag(sorted []Record) (Tag, int) {
	counts := make(map[Tag]int)
	var order []Tag
	for _, r := range sorted {
		t := r.PrimaryTag()
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	var best Tag
	bestCount := 0
	for _, t := range order {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best, bestCount
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func percent(part, total int) int {
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
