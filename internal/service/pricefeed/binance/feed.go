package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

var ErrChainUnsupported = errors.New("binance feed does not provide option chains")

// Feed 从币安现货行情取价, 用于 crypto 类标的。
// 不提供期权链, 对应标的应关闭 options_enabled。
type Feed struct {
	cli *binance.Client
}

func NewFeed(cli *binance.Client) *Feed {
	return &Feed{cli: cli}
}

func (f *Feed) Spot(ctx context.Context, symbol string) (float64, error) {
	// 配置里写 "BTC-USD" 这类形式, 币安接口要求 "BTCUSDT"
	pair := toBinancePair(symbol)
	prices, err := f.cli.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get binance price for %s: %w", pair, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no binance price returned for %s", pair)
	}
	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return 0, fmt.Errorf("fail to parse price %q: %w", prices[0].Price, err)
	}
	return price.InexactFloat64(), nil
}

func (f *Feed) Chain(ctx context.Context, symbol string, spot float64, spec pricefeed.ChainSpec) (pricefeed.OptionChain, error) {
	return nil, ErrChainUnsupported
}

func toBinancePair(symbol string) string {
	s := strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
	if strings.HasSuffix(s, "USD") && !strings.HasSuffix(s, "USDT") {
		s += "T"
	}
	return s
}
