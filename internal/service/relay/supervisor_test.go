package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KNICEX/binance-signals/internal/service/exchange"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	done       chan struct{}
	once       sync.Once
	closed     atomic.Int32
	keepalives atomic.Int32
	keepErr    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{done: make(chan struct{})}
}

func (f *fakeSession) Done() <-chan struct{} {
	return f.done
}

func (f *fakeSession) KeepAlive(ctx context.Context) error {
	f.keepalives.Add(1)
	return f.keepErr
}

func (f *fakeSession) Close(ctx context.Context) error {
	f.closed.Add(1)
	f.drop()
	return nil
}

// drop 模拟连接断开
func (f *fakeSession) drop() {
	f.once.Do(func() { close(f.done) })
}

type fakeStream struct {
	mu        sync.Mutex
	sessions  []*fakeSession
	handlers  []exchange.EventHandler
	failFirst int
	attempts  int
}

func (f *fakeStream) Open(ctx context.Context, handler exchange.EventHandler, errHandler exchange.ErrHandler) (exchange.StreamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failFirst {
		return nil, errors.New("listen key rejected")
	}
	s := newFakeSession()
	f.sessions = append(f.sessions, s)
	f.handlers = append(f.handlers, handler)
	return s, nil
}

func (f *fakeStream) opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeStream) last() (*fakeSession, exchange.EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.sessions)
	return f.sessions[n-1], f.handlers[n-1]
}

type recordingHandler struct {
	mu      sync.Mutex
	events  []exchange.AccountEvent
	panicOn exchange.EventType
}

func (h *recordingHandler) Handle(ctx context.Context, event exchange.AccountEvent) {
	if event.EventType == h.panicOn {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func runSupervisor(t *testing.T, s *Supervisor) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Run(ctx))
	}()
	return func() {
		cancelCtx()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("supervisor did not stop")
		}
	}
}

func TestSupervisor_StartReplacesSession(t *testing.T) {
	stream := &fakeStream{}
	s := NewSupervisor(stream, &recordingHandler{}, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, StateIdle, s.State())
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, StateStreaming, s.State())
	assert.Equal(t, 2, stream.opened())

	// 第一个会话已被关闭, 只剩一个活跃会话
	assert.EqualValues(t, 1, stream.sessions[0].closed.Load())
	assert.EqualValues(t, 0, stream.sessions[1].closed.Load())

	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, StateIdle, s.State())
	assert.EqualValues(t, 1, stream.sessions[1].closed.Load())
	// 重复 Stop 无副作用
	require.NoError(t, s.Stop(ctx))
}

func TestSupervisor_StartFailure(t *testing.T) {
	stream := &fakeStream{failFirst: 1}
	s := NewSupervisor(stream, &recordingHandler{}, zerolog.Nop())

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateIdle, s.State())
}

func TestSupervisor_DispatchesSubscribedEvents(t *testing.T) {
	stream := &fakeStream{}
	handler := &recordingHandler{}
	s := NewSupervisor(stream, handler, zerolog.Nop(), WithWorkers(2), WithBuffer(8))
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, func() bool { return stream.opened() == 1 }, time.Second, 5*time.Millisecond)
	_, push := stream.last()

	push(exchange.AccountEvent{EventType: exchange.EventTypeMarginCall})
	push(exchange.AccountEvent{EventType: exchange.EventTypeAccountUpdate})
	push(exchange.AccountEvent{EventType: exchange.EventTypeOrderTradeUpdate})
	push(exchange.AccountEvent{EventType: exchange.EventTypeAccountConfigUpdate})

	assert.Eventually(t, func() bool { return handler.count() == 3 }, time.Second, 5*time.Millisecond)
	// 未订阅的事件类型不处理
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, handler.count())
}

func TestSupervisor_PanicDoesNotStopWorkers(t *testing.T) {
	stream := &fakeStream{}
	handler := &recordingHandler{panicOn: exchange.EventTypeMarginCall}
	s := NewSupervisor(stream, handler, zerolog.Nop(), WithWorkers(1))
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, func() bool { return stream.opened() == 1 }, time.Second, 5*time.Millisecond)
	_, push := stream.last()
	push(exchange.AccountEvent{EventType: exchange.EventTypeMarginCall})
	push(exchange.AccountEvent{EventType: exchange.EventTypeOrderTradeUpdate})

	assert.Eventually(t, func() bool { return handler.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSupervisor_ReconnectsAfterDrop(t *testing.T) {
	stream := &fakeStream{}
	s := NewSupervisor(stream, &recordingHandler{}, zerolog.Nop(), WithBackoff(5*time.Millisecond, 20*time.Millisecond))
	stop := runSupervisor(t, s)

	require.Eventually(t, func() bool { return stream.opened() == 1 }, time.Second, 5*time.Millisecond)
	first, _ := stream.last()
	first.drop()

	require.Eventually(t, func() bool { return stream.opened() == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return s.State() == StateStreaming }, time.Second, 5*time.Millisecond)

	stop()
	second, _ := stream.last()
	assert.EqualValues(t, 1, second.closed.Load())
	assert.Equal(t, StateIdle, s.State())
}

func TestSupervisor_RetriesOpenFailure(t *testing.T) {
	stream := &fakeStream{failFirst: 2}
	s := NewSupervisor(stream, &recordingHandler{}, zerolog.Nop(), WithBackoff(5*time.Millisecond, 20*time.Millisecond))
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, func() bool { return stream.opened() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateStreaming, s.State())
}

func TestSupervisor_ListenKeyExpiredRestarts(t *testing.T) {
	stream := &fakeStream{}
	handler := &recordingHandler{}
	s := NewSupervisor(stream, handler, zerolog.Nop(), WithBackoff(5*time.Millisecond, 20*time.Millisecond))
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, func() bool { return stream.opened() == 1 }, time.Second, 5*time.Millisecond)
	first, push := stream.last()
	push(exchange.AccountEvent{EventType: exchange.EventTypeListenKeyExpired})

	require.Eventually(t, func() bool { return stream.opened() == 2 }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, first.closed.Load())
	assert.Zero(t, handler.count())
}

func TestSupervisor_KeepAlive(t *testing.T) {
	stream := &fakeStream{}
	s := NewSupervisor(stream, &recordingHandler{}, zerolog.Nop())
	ctx := context.Background()

	// 没有会话时什么也不做
	require.NoError(t, NewKeepAliveTask(s).Run(ctx))

	require.NoError(t, s.Start(ctx))
	session, _ := stream.last()
	require.NoError(t, NewKeepAliveTask(s).Run(ctx))
	assert.EqualValues(t, 1, session.keepalives.Load())

	session.keepErr = errors.New("listen key does not exist")
	assert.Error(t, s.KeepAlive(ctx))
	select {
	case <-s.restartC:
	default:
		t.Fatal("expected restart request")
	}
}

func TestSupervisor_DispatchSkipsEventsAfterCancel(t *testing.T) {
	handler := &recordingHandler{}
	s := NewSupervisor(&fakeStream{}, handler, zerolog.Nop(), WithBuffer(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// ctx 取消后 select 随机选择分支, 多跑几轮覆盖取到事件的情况
	for i := 0; i < 50; i++ {
		s.events <- exchange.AccountEvent{EventType: exchange.EventTypeOrderTradeUpdate}
		s.dispatch(ctx)
		require.Len(t, s.events, 1)
		<-s.events
	}
	assert.Zero(t, handler.count())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "State(9)", State(9).String())
}
