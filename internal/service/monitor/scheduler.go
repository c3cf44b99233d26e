package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/KNICEX/option-monitor/internal/config"
	"github.com/KNICEX/option-monitor/internal/schedule"
	"github.com/KNICEX/option-monitor/internal/service/llm"
	"github.com/KNICEX/option-monitor/internal/service/notification"
	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/KNICEX/option-monitor/internal/service/strategy"
	"github.com/KNICEX/option-monitor/pkg/metrics"
)

// FeedSelector 为每个标的挑选行情来源, 比如 crypto 走交易所、其余走模拟源
type FeedSelector func(ins config.Instrument) pricefeed.Feed

// MultiSymbolWatcher 多标的调度器: 驱动所有 SymbolWatcher 的周期,
// 聚合结果并决定何时发送跨标的摘要。
// 标的集合在初始化时固定, 进程生命周期内不增删。
type MultiSymbolWatcher struct {
	watchers []*SymbolWatcher
	order    []string // 配置顺序, 聚合与摘要都按这个顺序

	interval      time.Duration
	notifyTimeout time.Duration
	maxIterations int

	notifier notification.Notifier
	llmSvc   llm.Service
	recorder *metrics.Recorder

	// 上次发摘要的小时, -1 表示还没发过
	lastSummaryHour int

	now func() time.Time
}

var _ schedule.Task = (*MultiSymbolWatcher)(nil)

type SchedulerOption func(s *MultiSymbolWatcher)

func WithNotifier(n notification.Notifier) SchedulerOption {
	return func(s *MultiSymbolWatcher) {
		s.notifier = n
	}
}

func WithLLM(svc llm.Service) SchedulerOption {
	return func(s *MultiSymbolWatcher) {
		s.llmSvc = svc
	}
}

func WithRecorder(r *metrics.Recorder) SchedulerOption {
	return func(s *MultiSymbolWatcher) {
		s.recorder = r
	}
}

// WithClock 注入时钟, 调度器和它构建的所有监控器共用
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *MultiSymbolWatcher) {
		s.now = now
	}
}

// WithMaxIterations 限制 Run 的迭代次数, 0 表示一直运行到被中断
func WithMaxIterations(n int) SchedulerOption {
	return func(s *MultiSymbolWatcher) {
		s.maxIterations = n
	}
}

func NewMultiSymbolWatcher(instruments []config.Instrument, monitorCfg config.Monitor,
	feedFor FeedSelector, registry *strategy.Registry, opts ...SchedulerOption) *MultiSymbolWatcher {

	s := &MultiSymbolWatcher{
		interval:        time.Duration(monitorCfg.UpdateIntervalSeconds) * time.Second,
		notifyTimeout:   time.Duration(monitorCfg.NotifyTimeoutSeconds) * time.Second,
		notifier:        notification.NewConsoleNotifier(),
		lastSummaryHour: -1,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, ins := range instruments {
		if ins.Symbol == "" || !ins.IsEnabled() {
			continue
		}
		var strategies []strategy.Strategy
		if registry != nil {
			strategies = registry.Resolve(ins.Symbol)
		}
		if len(strategies) == 0 {
			// 没有匹配策略的标的照常报价报时段, 只是永远不产信号
			slog.Warn("no strategies matched, watcher stays active with empty set", "symbol", ins.Symbol)
		}
		w := NewSymbolWatcher(ins, feedFor(ins),
			WithStrategies(strategies),
			WithWatcherNotifier(s.notifier),
			WithWatcherRecorder(s.recorder),
			WithWatcherClock(s.now),
			WithNotifyTimeout(s.notifyTimeout),
		)
		s.watchers = append(s.watchers, w)
		s.order = append(s.order, ins.Symbol)
	}

	slog.Info("multi symbol watcher initialized", "symbols", len(s.watchers))
	return s
}

// RunOnce 按配置顺序跑一遍所有标的的监控周期, 聚合结果,
// 并在有信号或整点心跳时发送一次摘要。
// 摘要只会在所有标的都完成后基于完整结果集发送。
func (s *MultiSymbolWatcher) RunOnce(ctx context.Context) map[string]CycleResult {
	results := make(map[string]CycleResult, len(s.watchers))
	hasSignals := false

	for _, w := range s.watchers {
		result := w.RunCycle(ctx)
		results[w.Symbol()] = result
		if len(result.Signals) > 0 {
			hasSignals = true
		}

		if s.recorder != nil {
			s.recorder.RecordCycle(w.Symbol(), result.Err == "")
			if result.CurrentPrice > 0 {
				s.recorder.RecordLastPrice(w.Symbol(), result.CurrentPrice)
			}
			for _, sig := range result.Signals {
				s.recorder.RecordSignal(sig.Symbol, sig.Strategy)
			}
		}
	}

	currentHour := s.now().Hour()
	if hasSignals || s.lastSummaryHour != currentHour {
		s.dispatchSummary(ctx, s.buildSummary(ctx, results))
		s.lastSummaryHour = currentHour
	}
	return results
}

func (s *MultiSymbolWatcher) dispatchSummary(ctx context.Context, summary string) {
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	result, err := s.notifier.Send(notifyCtx, notification.Message{Text: summary})
	if err != nil {
		slog.Error("failed to send market summary", "error", err)
		return
	}
	for channel, cr := range result {
		if !cr.Success {
			slog.Warn("summary notification channel failed", "channel", channel, "error", cr.Error)
			if s.recorder != nil {
				s.recorder.RecordDeliveryFailure(channel)
			}
		}
	}
}

// RunContinuous 以固定名义间隔重复 RunOnce。
// 每轮按上一轮耗时修正休眠时间, 慢周期不会让节奏持续漂移。
// maxIterations 为 0 时一直运行, ctx 取消是干净退出而不是错误。
func (s *MultiSymbolWatcher) RunContinuous(ctx context.Context, maxIterations int) error {
	iteration := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor loop interrupted")
			return nil
		default:
		}

		start := time.Now()
		s.RunOnce(ctx)
		elapsed := time.Since(start)
		if s.recorder != nil {
			s.recorder.RecordCycleDuration(elapsed.Seconds())
		}

		iteration++
		if maxIterations > 0 && iteration >= maxIterations {
			slog.Info("monitor loop finished", "iterations", iteration)
			return nil
		}

		sleep := SleepDuration(s.interval, elapsed)
		slog.Info("next update scheduled",
			"at", time.Now().Add(sleep).Format("15:04:05"),
			"in", sleep.Round(100*time.Millisecond))

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("monitor loop interrupted")
			return nil
		case <-timer.C:
		}
	}
}

// SleepDuration 下一轮前的休眠时长: max(1s, interval - elapsed), 永不为负
func SleepDuration(interval, elapsed time.Duration) time.Duration {
	sleep := interval - elapsed
	if sleep < time.Second {
		return time.Second
	}
	return sleep
}

func (s *MultiSymbolWatcher) Run(ctx context.Context) error {
	return s.RunContinuous(ctx, s.maxIterations)
}

func (s *MultiSymbolWatcher) Name() string {
	return "multi symbol option monitor task"
}
