package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task 定时任务, 每次触发调用一次 Run
type Task interface {
	Run(ctx context.Context) error
	Name() string
}

// 标准 5 段 cron 表达式, 同时支持 @every / @hourly 等描述符
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec validates a cron expression.
func ParseSpec(spec string) (cron.Schedule, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}
	return sched, nil
}

// Scheduler 按 cron 表达式触发 Task, 任务失败只记录日志, 等待下一次触发
// 同一任务上一次未结束时跳过本次触发
type Scheduler struct {
	c      *cron.Cron
	logger zerolog.Logger

	mu   sync.Mutex
	ctx  context.Context
	jobs int
}

func NewScheduler(logger zerolog.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		c: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With().Str("component", "scheduler").Logger(),
		ctx:    context.Background(),
	}
}

// Add registers task under spec. timeout <= 0 means the run is bounded only by Run's context.
func (s *Scheduler) Add(spec string, task Task, timeout time.Duration) error {
	sched, err := ParseSpec(spec)
	if err != nil {
		return err
	}
	s.c.Schedule(sched, cron.FuncJob(func() {
		s.runTask(task, timeout)
	}))

	s.mu.Lock()
	s.jobs++
	s.mu.Unlock()
	s.logger.Info().Str("task", task.Name()).Str("spec", spec).Msg("task scheduled")
	return nil
}

func (s *Scheduler) runTask(task Task, timeout time.Duration) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("task", task.Name()).Msg("task panic")
		}
	}()

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		s.logger.Error().Err(err).Str("task", task.Name()).Dur("took", time.Since(start)).Msg("task failed")
		return
	}
	s.logger.Debug().Str("task", task.Name()).Dur("took", time.Since(start)).Msg("task done")
}

// Run 阻塞直到 ctx 取消, 返回前等待执行中的任务结束
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	jobs := s.jobs
	s.mu.Unlock()

	s.c.Start()
	s.logger.Info().Int("tasks", jobs).Msg("scheduler started")
	<-ctx.Done()
	<-s.c.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
	return nil
}
