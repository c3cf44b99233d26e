package strategy

import (
	"sort"
	"strings"

	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/samber/lo"
)

// Factory 构造一个新的策略实例。
// Resolve 每次都走工厂, 保证各监控器拿到的实例互不共享内部状态。
type Factory func() Strategy

type registryEntry struct {
	match string
	build Factory
}

type Registry struct {
	entries []registryEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register 注册一个策略工厂, match 为标的匹配串, 空串匹配所有标的
func (r *Registry) Register(match string, f Factory) {
	r.entries = append(r.entries, registryEntry{
		match: strings.ToUpper(match),
		build: f,
	})
}

// Resolve 按名称匹配解析某标的适用的策略, 零个也是合法结果, 永不报错
func (r *Registry) Resolve(symbol string) []Strategy {
	upper := strings.ToUpper(symbol)
	matched := lo.Filter(r.entries, func(e registryEntry, _ int) bool {
		return e.match == "" || strings.Contains(upper, e.match)
	})
	return lo.Map(matched, func(e registryEntry, _ int) Strategy {
		return e.build()
	})
}

// nearestQuote 从期权链中取最近到期日上最接近现货价的报价
func nearestQuote(chain pricefeed.OptionChain, spot float64) (expiry string, strike int, quote pricefeed.OptionQuote, ok bool) {
	if len(chain) == 0 {
		return "", 0, pricefeed.OptionQuote{}, false
	}
	expiries := lo.Keys(chain)
	sort.Strings(expiries)
	expiry = expiries[0]

	quotes := chain[expiry]
	if len(quotes) == 0 {
		return "", 0, pricefeed.OptionQuote{}, false
	}
	atm := int(spot + 0.5)
	strikes := lo.Keys(quotes)
	sort.Ints(strikes)
	strike = lo.MinBy(strikes, func(a, b int) bool {
		return abs(a-atm) < abs(b-atm)
	})
	return expiry, strike, quotes[strike], true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
