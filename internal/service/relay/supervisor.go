package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
)

type State int32

const (
	StateIdle State = iota
	StateStarting
	StateStreaming
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type EventHandler interface {
	Handle(ctx context.Context, event exchange.AccountEvent)
}

// Supervisor 维护唯一的用户数据流会话, 事件写入队列后由 worker 并发处理
// 同一时刻最多一个会话, 重复 Start 会先关闭旧会话
type Supervisor struct {
	stream  exchange.UserStreamService
	handler EventHandler
	logger  zerolog.Logger

	workers     int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	stableAfter time.Duration

	events   chan exchange.AccountEvent
	restartC chan struct{}

	mu        sync.Mutex
	state     State
	session   exchange.StreamSession
	startedAt time.Time
}

type SupervisorOption func(s *Supervisor)

func WithWorkers(n int) SupervisorOption {
	return func(s *Supervisor) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithBuffer(n int) SupervisorOption {
	return func(s *Supervisor) {
		if n >= 0 {
			s.events = make(chan exchange.AccountEvent, n)
		}
	}
}

// WithBackoff bounds the reconnect delay.
func WithBackoff(minDelay, maxDelay time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if minDelay > 0 && maxDelay >= minDelay {
			s.minBackoff, s.maxBackoff = minDelay, maxDelay
		}
	}
}

func NewSupervisor(stream exchange.UserStreamService, handler EventHandler, logger zerolog.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		stream:      stream,
		handler:     handler,
		logger:      logger.With().Str("component", "supervisor").Logger(),
		workers:     4,
		minBackoff:  time.Second,
		maxBackoff:  time.Minute,
		stableAfter: time.Minute,
		events:      make(chan exchange.AccountEvent, 64),
		restartC:    make(chan struct{}, 1),
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start 建立新会话, 已有会话时先关闭再重建. ctx 同时约束会话内事件入队
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stopLocked(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("close previous user stream failed")
	}

	s.state = StateStarting
	session, err := s.stream.Open(ctx, s.onEvent(ctx), s.onError)
	if err != nil {
		s.state = StateIdle
		return fmt.Errorf("open user stream: %w", err)
	}
	s.session = session
	s.startedAt = time.Now()
	s.state = StateStreaming

	// 新会话建立后, 旧会话遗留的重启请求作废
	select {
	case <-s.restartC:
	default:
	}
	s.logger.Info().Msg("user stream started")
	return nil
}

func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(ctx)
}

func (s *Supervisor) stopLocked(ctx context.Context) error {
	if s.session == nil {
		s.state = StateIdle
		return nil
	}
	s.state = StateStopping
	err := s.session.Close(ctx)
	s.session = nil
	s.state = StateIdle
	if err != nil {
		return fmt.Errorf("close user stream: %w", err)
	}
	return nil
}

// KeepAlive 延长当前会话的 listenKey, 失败时安排重建会话
func (s *Supervisor) KeepAlive(ctx context.Context) error {
	session := s.current()
	if session == nil {
		return nil
	}
	if err := session.KeepAlive(ctx); err != nil {
		s.requestRestart()
		return fmt.Errorf("keepalive user stream: %w", err)
	}
	return nil
}

// Run 阻塞直到 ctx 取消: 启动 worker, 建立会话, 连接断开后按退避时间重连
func (s *Supervisor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.dispatch(ctx)
		}()
	}

	b := &backoff.Backoff{Min: s.minBackoff, Max: s.maxBackoff, Factor: 2, Jitter: true}
	for ctx.Err() == nil {
		session := s.current()
		if session == nil {
			if err := s.Start(ctx); err != nil {
				if ctx.Err() != nil {
					break
				}
				d := b.Duration()
				s.logger.Error().Err(err).Dur("retry_in", d).Msg("start user stream failed")
				sleep(ctx, d)
			}
			continue
		}

		select {
		case <-ctx.Done():
		case <-s.restartC:
			s.logger.Info().Msg("restarting user stream")
			if err := s.Start(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("restart user stream failed")
			}
		case <-session.Done():
			lived, ok := s.detach(ctx, session)
			if !ok {
				continue
			}
			if lived >= s.stableAfter {
				b.Reset()
			}
			d := b.Duration()
			s.logger.Warn().Dur("lived", lived).Dur("retry_in", d).Msg("user stream closed, reconnecting")
			sleep(ctx, d)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		s.logger.Warn().Err(err).Msg("stop user stream failed")
	}
	wg.Wait()
	if n := len(s.events); n > 0 {
		s.logger.Warn().Int("pending", n).Msg("discard pending events on shutdown")
	}
	s.logger.Info().Msg("supervisor stopped")
	return nil
}

func (s *Supervisor) current() exchange.StreamSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// detach 清理已断开的会话, 会话已被替换时返回 false
func (s *Supervisor) detach(ctx context.Context, session exchange.StreamSession) (time.Duration, bool) {
	s.mu.Lock()
	if s.session != session {
		s.mu.Unlock()
		return 0, false
	}
	lived := time.Since(s.startedAt)
	s.session = nil
	s.state = StateIdle
	s.mu.Unlock()

	// 注销 listenKey, 连接已断开所以只记录错误
	if err := session.Close(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("close dropped user stream failed")
	}
	return lived, true
}

func (s *Supervisor) onEvent(ctx context.Context) exchange.EventHandler {
	return func(event exchange.AccountEvent) {
		switch {
		case event.EventType == exchange.EventTypeListenKeyExpired:
			s.logger.Warn().Msg("listen key expired")
			s.requestRestart()
		case !event.EventType.Subscribed():
			s.logger.Debug().Str("event", string(event.EventType)).Msg("ignore unsubscribed event")
		default:
			select {
			case s.events <- event:
			case <-ctx.Done():
				s.logger.Warn().Str("event", string(event.EventType)).Msg("discard event on shutdown")
			}
		}
	}
}

func (s *Supervisor) onError(err error) {
	s.logger.Warn().Err(err).Msg("user stream error")
}

func (s *Supervisor) requestRestart() {
	select {
	case s.restartC <- struct{}{}:
	default:
	}
}

func (s *Supervisor) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.events:
			// 退出时 select 仍可能取到队列中的事件, 留给 Run 统一记录丢弃
			if ctx.Err() != nil {
				select {
				case s.events <- event:
				default:
					s.logger.Warn().Str("event", string(event.EventType)).Msg("discard event on shutdown")
				}
				return
			}
			s.handle(ctx, event)
		}
	}
}

// handle 单个事件处理失败 (包括 panic) 不影响后续事件
func (s *Supervisor) handle(ctx context.Context, event exchange.AccountEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("event", string(event.EventType)).Msg("handle event panic")
		}
	}()
	s.handler.Handle(ctx, event)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
