package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
)

// Feed 随机游走的模拟行情源。
// 注入固定种子的 rand.Rand 后输出完全确定, 单测依赖这一点。
type Feed struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	last map[string]float64
	now  func() time.Time
}

type Option func(f *Feed)

func WithRand(rnd *rand.Rand) Option {
	return func(f *Feed) {
		f.rnd = rnd
	}
}

// WithInitialPrice 预置某个标的的起始价, 跳过随机初始化
func WithInitialPrice(symbol string, price float64) Option {
	return func(f *Feed) {
		f.last[symbol] = price
	}
}

func WithNow(now func() time.Time) Option {
	return func(f *Feed) {
		f.now = now
	}
}

func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
		last: make(map[string]float64),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Spot 首次返回 100~200 的随机起始价, 之后每次在 ±0.5% 内游走
func (f *Feed) Spot(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	price, ok := f.last[symbol]
	if !ok {
		price = 100 + f.rnd.Float64()*100
	} else {
		changePct := (f.rnd.Float64() - 0.5) * 0.01
		price *= 1 + changePct
	}
	f.last[symbol] = price
	return price, nil
}

func (f *Feed) Chain(ctx context.Context, symbol string, spot float64, spec pricefeed.ChainSpec) (pricefeed.OptionChain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	today := f.now()
	chain := make(pricefeed.OptionChain, len(spec.Expiries))
	for _, expiry := range spec.Expiries {
		days := int(expiry.Sub(today).Hours() / 24)
		quotes := make(map[int]pricefeed.OptionQuote, len(spec.Strikes))
		for _, strike := range spec.Strikes {
			call := f.noisy(pricefeed.TheoPrice(pricefeed.Call, spot, float64(strike), days))
			put := f.noisy(pricefeed.TheoPrice(pricefeed.Put, spot, float64(strike), days))
			quotes[strike] = pricefeed.OptionQuote{
				Call:    call,
				Put:     put,
				CallBid: call * 0.95,
				CallAsk: call * 1.05,
				PutBid:  put * 0.95,
				PutAsk:  put * 1.05,
				IVCall:  0.3 + (f.rnd.Float64()-0.5)*0.1,
				IVPut:   0.3 + (f.rnd.Float64()-0.5)*0.1,
			}
		}
		chain[expiry.Format(time.DateOnly)] = quotes
	}
	return chain, nil
}

// noisy 在理论价上叠加 ±5% 扰动
func (f *Feed) noisy(price float64) float64 {
	return price * (1.0 + (f.rnd.Float64()-0.5)*0.1)
}
