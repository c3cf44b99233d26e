package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/notification"
	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/KNICEX/option-monitor/internal/service/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) Spot(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockFeed) Chain(ctx context.Context, symbol string, spot float64, spec pricefeed.ChainSpec) (pricefeed.OptionChain, error) {
	args := m.Called(ctx, symbol, spot, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pricefeed.OptionChain), args.Error(1)
}

// panicFeed 模拟行情源内部崩溃
type panicFeed struct{}

func (panicFeed) Spot(ctx context.Context, symbol string) (float64, error) {
	panic("feed exploded")
}

func (panicFeed) Chain(ctx context.Context, symbol string, spot float64, spec pricefeed.ChainSpec) (pricefeed.OptionChain, error) {
	panic("feed exploded")
}

type stubStrategy struct {
	name    string
	signals []strategy.Signal
	err     error
	calls   int
}

func (s *stubStrategy) Name() string {
	return s.name
}

func (s *stubStrategy) Evaluate(ctx context.Context, snapshot strategy.Snapshot, chain pricefeed.OptionChain) ([]strategy.Signal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.signals, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []notification.Message
	result notification.DeliveryResult
	err    error
}

func (n *recordingNotifier) Send(ctx context.Context, msg notification.Message) (notification.DeliveryResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	if n.err != nil {
		return nil, n.err
	}
	if n.result != nil {
		return n.result, nil
	}
	return notification.DeliveryResult{"console": {Success: true}}, nil
}

func (n *recordingNotifier) messages() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.sent...)
}

func testChain() pricefeed.OptionChain {
	return pricefeed.OptionChain{
		"2025-03-14": {
			100: {Call: 2.5, Put: 2.3, CallBid: 2.4, CallAsk: 2.6, PutBid: 2.2, PutAsk: 2.4, IVCall: 0.3, IVPut: 0.3},
		},
	}
}

func testSignal(symbol string) strategy.Signal {
	sig := strategy.NewSignal(symbol, "stub", strategy.BuyCall)
	sig.Strike = 100
	sig.Expiry = "2025-03-14"
	sig.SpotPrice = 100
	sig.Confidence = 0.8
	return sig
}

func TestSymbolWatcher_RunCycle(t *testing.T) {
	ins := equityInstrument("XYZ")
	feed := new(mockFeed)
	feed.On("Spot", mock.Anything, "XYZ").Return(101.25, nil)
	feed.On("Chain", mock.Anything, "XYZ", 101.25, mock.Anything).Return(testChain(), nil)

	notifier := &recordingNotifier{}
	st := &stubStrategy{name: "stub", signals: []strategy.Signal{testSignal("XYZ")}}

	w := NewSymbolWatcher(ins, feed,
		WithStrategies([]strategy.Strategy{st}),
		WithWatcherNotifier(notifier),
		WithWatcherClock(func() time.Time { return tuesdayAt(10, 0) }),
	)

	result := w.RunCycle(context.Background())

	assert.Equal(t, "XYZ", result.Symbol)
	assert.True(t, result.DataUpdated)
	assert.Equal(t, SessionRegular, result.Session)
	assert.Len(t, result.Signals, 1)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 101.25, result.CurrentPrice)
	assert.Empty(t, result.Err)

	// 每条信号一条通知
	msgs := notifier.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "期权交易信号")
	assert.Contains(t, msgs[0].Text, "买入看涨期权")
	feed.AssertExpectations(t)
}

func TestSymbolWatcher_SpotFailureRetainsSnapshot(t *testing.T) {
	ins := equityInstrument("XYZ")
	feed := new(mockFeed)
	feed.On("Spot", mock.Anything, "XYZ").Return(100.0, nil).Once()
	feed.On("Chain", mock.Anything, "XYZ", 100.0, mock.Anything).Return(testChain(), nil).Once()
	feed.On("Spot", mock.Anything, "XYZ").Return(0.0, errors.New("feed down")).Once()

	w := NewSymbolWatcher(ins, feed,
		WithWatcherClock(func() time.Time { return tuesdayAt(10, 0) }),
	)

	first := w.RunCycle(context.Background())
	require.True(t, first.DataUpdated)
	require.Equal(t, 100.0, first.CurrentPrice)

	second := w.RunCycle(context.Background())
	assert.False(t, second.DataUpdated)
	// 上一份快照原样保留
	assert.Equal(t, 100.0, second.CurrentPrice)
	assert.Empty(t, second.Err)
	feed.AssertExpectations(t)
}

func TestSymbolWatcher_ChainFailureRetainsSnapshot(t *testing.T) {
	ins := equityInstrument("XYZ")
	feed := new(mockFeed)
	feed.On("Spot", mock.Anything, "XYZ").Return(100.0, nil).Once()
	feed.On("Chain", mock.Anything, "XYZ", 100.0, mock.Anything).Return(testChain(), nil).Once()
	feed.On("Spot", mock.Anything, "XYZ").Return(120.0, nil).Once()
	feed.On("Chain", mock.Anything, "XYZ", 120.0, mock.Anything).Return(nil, errors.New("chain down")).Once()

	w := NewSymbolWatcher(ins, feed,
		WithWatcherClock(func() time.Time { return tuesdayAt(10, 0) }),
	)

	first := w.RunCycle(context.Background())
	require.True(t, first.DataUpdated)

	// 现货拉到了但期权链失败, 新现货价不能单独提交
	second := w.RunCycle(context.Background())
	assert.False(t, second.DataUpdated)
	assert.Equal(t, 100.0, second.CurrentPrice)
	feed.AssertExpectations(t)
}

func TestSymbolWatcher_NotTradableSkipsStrategies(t *testing.T) {
	ins := equityInstrument("XYZ")
	feed := new(mockFeed)
	feed.On("Spot", mock.Anything, "XYZ").Return(100.0, nil)
	feed.On("Chain", mock.Anything, "XYZ", 100.0, mock.Anything).Return(testChain(), nil)

	st := &stubStrategy{name: "stub", signals: []strategy.Signal{testSignal("XYZ")}}
	saturday := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)

	w := NewSymbolWatcher(ins, feed,
		WithStrategies([]strategy.Strategy{st}),
		WithWatcherClock(func() time.Time { return saturday }),
	)

	result := w.RunCycle(context.Background())

	// 数据照常刷新, 但不跑策略
	assert.True(t, result.DataUpdated)
	assert.Equal(t, SessionClosed, result.Session)
	assert.Empty(t, result.Signals)
	assert.Zero(t, st.calls)
}

func TestSymbolWatcher_StrategyErrorIsolated(t *testing.T) {
	ins := equityInstrument("XYZ")
	feed := new(mockFeed)
	feed.On("Spot", mock.Anything, "XYZ").Return(100.0, nil)
	feed.On("Chain", mock.Anything, "XYZ", 100.0, mock.Anything).Return(testChain(), nil)

	broken := &stubStrategy{name: "broken", err: errors.New("evaluate failed")}
	healthy := &stubStrategy{name: "healthy", signals: []strategy.Signal{testSignal("XYZ")}}

	w := NewSymbolWatcher(ins, feed,
		WithStrategies([]strategy.Strategy{broken, healthy}),
		WithWatcherClock(func() time.Time { return tuesdayAt(10, 0) }),
	)

	result := w.RunCycle(context.Background())

	// 一个策略失败不影响其他策略, 也不算周期错误
	assert.Len(t, result.Signals, 1)
	assert.Empty(t, result.Err)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestSymbolWatcher_DrainEmptyQueue(t *testing.T) {
	ins := equityInstrument("XYZ")
	notifier := &recordingNotifier{}

	w := NewSymbolWatcher(ins, new(mockFeed), WithWatcherNotifier(notifier))

	drained := w.DrainSignalQueue(context.Background())
	assert.Empty(t, drained)
	assert.Empty(t, notifier.messages())
}

func TestSymbolWatcher_DeliveryFailureDoesNotStopQueue(t *testing.T) {
	ins := equityInstrument("XYZ")
	feed := new(mockFeed)
	feed.On("Spot", mock.Anything, "XYZ").Return(100.0, nil)
	feed.On("Chain", mock.Anything, "XYZ", 100.0, mock.Anything).Return(testChain(), nil)

	notifier := &recordingNotifier{err: errors.New("all channels down")}
	st := &stubStrategy{name: "stub", signals: []strategy.Signal{testSignal("XYZ"), testSignal("XYZ")}}

	w := NewSymbolWatcher(ins, feed,
		WithStrategies([]strategy.Strategy{st}),
		WithWatcherNotifier(notifier),
		WithWatcherClock(func() time.Time { return tuesdayAt(10, 0) }),
	)

	result := w.RunCycle(context.Background())

	// 投递失败只记录, 信号仍按 FIFO 全部处理
	assert.Equal(t, 2, result.Processed)
	assert.Len(t, notifier.messages(), 2)
	assert.Empty(t, result.Err)
}

func TestSymbolWatcher_RunCyclePanicRecovered(t *testing.T) {
	ins := equityInstrument("XYZ")

	w := NewSymbolWatcher(ins, panicFeed{},
		WithWatcherClock(func() time.Time { return tuesdayAt(10, 0) }),
	)

	var result CycleResult
	assert.NotPanics(t, func() {
		result = w.RunCycle(context.Background())
	})
	assert.Equal(t, "XYZ", result.Symbol)
	assert.True(t, strings.Contains(result.Err, "panic"))
}
