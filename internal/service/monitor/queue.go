package monitor

import (
	"sync"

	"github.com/KNICEX/option-monitor/internal/service/strategy"
)

// signalQueue 单个监控器独占的 FIFO 信号队列。
// drain 一次性取走调用时刻的全部信号, 与 drain 并发入队的信号
// 留给下一次 drain。
type signalQueue struct {
	mu    sync.Mutex
	items []strategy.Signal
}

func (q *signalQueue) push(signals ...strategy.Signal) {
	if len(signals) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, signals...)
}

func (q *signalQueue) drain() []strategy.Signal {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = nil
	return drained
}
