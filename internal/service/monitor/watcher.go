package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/option-monitor/internal/config"
	"github.com/KNICEX/option-monitor/internal/service/notification"
	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/KNICEX/option-monitor/internal/service/strategy"
	"github.com/KNICEX/option-monitor/pkg/metrics"
)

// SymbolWatcher 单标的监控状态机。
// 独占自己的快照、期权链和信号队列, 互相之间不共享可变状态。
type SymbolWatcher struct {
	cfg  config.Instrument
	feed pricefeed.Feed

	strategies []strategy.Strategy
	notifier   notification.Notifier
	recorder   *metrics.Recorder

	// 首次刷新成功前为 nil
	snapshot *strategy.Snapshot
	chain    pricefeed.OptionChain

	queue signalQueue

	now           func() time.Time
	notifyTimeout time.Duration
}

type WatcherOption func(w *SymbolWatcher)

func WithStrategies(strategies []strategy.Strategy) WatcherOption {
	return func(w *SymbolWatcher) {
		w.strategies = strategies
	}
}

func WithWatcherNotifier(n notification.Notifier) WatcherOption {
	return func(w *SymbolWatcher) {
		w.notifier = n
	}
}

func WithWatcherRecorder(r *metrics.Recorder) WatcherOption {
	return func(w *SymbolWatcher) {
		w.recorder = r
	}
}

// WithWatcherClock 注入时钟, 时段分类相关测试用
func WithWatcherClock(now func() time.Time) WatcherOption {
	return func(w *SymbolWatcher) {
		w.now = now
	}
}

func WithNotifyTimeout(d time.Duration) WatcherOption {
	return func(w *SymbolWatcher) {
		w.notifyTimeout = d
	}
}

func NewSymbolWatcher(cfg config.Instrument, feed pricefeed.Feed, opts ...WatcherOption) *SymbolWatcher {
	w := &SymbolWatcher{
		cfg:           cfg,
		feed:          feed,
		now:           time.Now,
		notifyTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	slog.Info("symbol watcher initialized", "symbol", cfg.Symbol, "strategies", len(w.strategies))
	return w
}

func (w *SymbolWatcher) Symbol() string {
	return w.cfg.Symbol
}

// RefreshSnapshot 拉取新现货价并整体重建期权链。
// 失败时保留上一份快照和期权链, 只报告不升级。
func (w *SymbolWatcher) RefreshSnapshot(ctx context.Context) bool {
	spot, err := w.feed.Spot(ctx, w.cfg.Symbol)
	if err != nil {
		slog.Error("failed to refresh spot price", "symbol", w.cfg.Symbol, "error", err)
		return false
	}

	var chain pricefeed.OptionChain
	if w.cfg.HasOptions() {
		spec := pricefeed.ChainSpec{
			Strikes:  ResolveStrikes(spot, w.cfg.Options.PreferredStrikes),
			Expiries: ResolveExpiries(w.now(), w.cfg.Options.PreferredExpiries),
		}
		chain, err = w.feed.Chain(ctx, w.cfg.Symbol, spot, spec)
		if err != nil {
			slog.Error("failed to refresh option chain", "symbol", w.cfg.Symbol, "error", err)
			return false
		}
	}

	// 现货和期权链都拿到后才一起提交
	w.snapshot = &strategy.Snapshot{
		Symbol:    w.cfg.Symbol,
		Spot:      spot,
		UpdatedAt: w.now(),
	}
	w.chain = chain
	slog.Info("snapshot refreshed", "symbol", w.cfg.Symbol, "spot", fmt.Sprintf("%.2f", spot))
	return true
}

// RunStrategies 运行所有已解析的策略, 产出信号入队并返回。
// 没有策略或还没有快照时静默返回空, 不算错误。
func (w *SymbolWatcher) RunStrategies(ctx context.Context) []strategy.Signal {
	if len(w.strategies) == 0 || w.snapshot == nil {
		return nil
	}

	var signals []strategy.Signal
	for _, st := range w.strategies {
		out, err := st.Evaluate(ctx, *w.snapshot, w.chain)
		if err != nil {
			// 单个策略失败只损失它这个周期的信号
			slog.Error("strategy evaluation failed", "symbol", w.cfg.Symbol, "strategy", st.Name(), "error", err)
			continue
		}
		for _, sig := range out {
			slog.Info("strategy emitted signal",
				"symbol", w.cfg.Symbol, "strategy", st.Name(),
				"type", sig.Kind, "strike", sig.Strike, "expiry", sig.Expiry)
		}
		signals = append(signals, out...)
	}

	w.queue.push(signals...)
	return signals
}

// DrainSignalQueue 取走队列里当前的全部信号, 逐条推送通知后按 FIFO 顺序返回。
// 空队列时无副作用。
func (w *SymbolWatcher) DrainSignalQueue(ctx context.Context) []strategy.Signal {
	drained := w.queue.drain()
	if w.notifier == nil {
		return drained
	}

	for _, sig := range drained {
		notifyCtx, cancel := context.WithTimeout(ctx, w.notifyTimeout)
		result, err := w.notifier.Send(notifyCtx, notification.Message{Text: FormatSignalMessage(sig)})
		cancel()
		if err != nil {
			slog.Error("failed to send signal notification", "symbol", w.cfg.Symbol, "error", err)
			continue
		}
		for channel, cr := range result {
			if !cr.Success {
				slog.Warn("signal notification channel failed", "symbol", w.cfg.Symbol, "channel", channel, "error", cr.Error)
				if w.recorder != nil {
					w.recorder.RecordDeliveryFailure(channel)
				}
			}
		}
	}
	return drained
}

// RunCycle 一次完整的监控周期: 刷新 -> 分时段 -> 跑策略 -> 清队列。
// 任何内部错误都在这里收口成带错误描述的 CycleResult,
// 绝不向调度器抛出, 一个标的的故障不能拖垮整个舰队。
func (w *SymbolWatcher) RunCycle(ctx context.Context) (result CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("symbol cycle panicked", "symbol", w.cfg.Symbol, "panic", r)
			result = CycleResult{
				Symbol:    w.cfg.Symbol,
				Err:       fmt.Sprintf("cycle panic: %v", r),
				Timestamp: w.now(),
			}
		}
	}()

	refreshed := w.RefreshSnapshot(ctx)

	now := w.now()
	session := ClassifySession(now, w.cfg)
	tradable := IsTradable(now, w.cfg)

	var signals []strategy.Signal
	if tradable && refreshed {
		signals = w.RunStrategies(ctx)
	}

	processed := w.DrainSignalQueue(ctx)

	var spot float64
	if w.snapshot != nil {
		spot = w.snapshot.Spot
	}

	return CycleResult{
		Symbol:       w.cfg.Symbol,
		DataUpdated:  refreshed,
		Session:      session,
		Signals:      signals,
		Processed:    len(processed),
		CurrentPrice: spot,
		Timestamp:    now,
	}
}
