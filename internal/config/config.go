package config

import (
	"fmt"
	"log/slog"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Market string

const (
	MarketEquity Market = "equity"
	MarketCrypto Market = "crypto"
)

// TradingHours 盘前/盘中/盘后时间窗口, 本地时区, "HH:MM"
type TradingHours struct {
	MarketOpen     string `mapstructure:"market_open" default:"09:30" validate:"datetime=15:04"`
	MarketClose    string `mapstructure:"market_close" default:"16:00" validate:"datetime=15:04"`
	PreMarketStart string `mapstructure:"pre_market_start" default:"04:00" validate:"datetime=15:04"`
	AfterHoursEnd  string `mapstructure:"after_hours_end" default:"20:00" validate:"datetime=15:04"`
}

// OptionsConfig 期权偏好: 行权价描述符(ATM/ATM±N)与到期类型(weekly/monthly)
type OptionsConfig struct {
	PreferredStrikes  []string `mapstructure:"preferred_strikes" default:"[\"ATM\"]"`
	PreferredExpiries []string `mapstructure:"preferred_expiries" default:"[\"weekly\"]" validate:"dive,oneof=weekly monthly"`
}

// Instrument 单个标的的监控配置, 启动时加载一次, 之后只读。
// 布尔字段用指针, 否则 defaults 会把显式的 false 当成零值覆盖掉。
type Instrument struct {
	Symbol         string        `mapstructure:"symbol"`
	Market         Market        `mapstructure:"market" default:"equity" validate:"oneof=equity crypto"`
	Enabled        *bool         `mapstructure:"enabled" default:"true"`
	OptionsEnabled *bool         `mapstructure:"options_enabled" default:"true"`
	Options        OptionsConfig `mapstructure:"options"`
	TradingHours   TradingHours  `mapstructure:"trading_hours"`
}

func (i Instrument) IsEnabled() bool {
	return i.Enabled == nil || *i.Enabled
}

func (i Instrument) HasOptions() bool {
	return i.OptionsEnabled == nil || *i.OptionsEnabled
}

type Monitor struct {
	UpdateIntervalSeconds int `mapstructure:"update_interval_seconds" default:"60" validate:"min=1"`
	NotifyTimeoutSeconds  int `mapstructure:"notify_timeout_seconds" default:"10" validate:"min=1"`
}

var validate = validator.New()

// LoadInstruments 从 viper 的 instruments 段加载标的配置。
// 解析或校验失败时降级为空集合而不是报错, 让进程以零覆盖继续存活。
func LoadInstruments() []Instrument {
	var instruments []Instrument
	if err := viper.UnmarshalKey("instruments", &instruments); err != nil {
		slog.Error("failed to unmarshal instruments config", "error", err)
		return nil
	}

	instruments = lo.Filter(instruments, func(ins Instrument, _ int) bool {
		return ins.Symbol != ""
	})

	// 先反序列化再补默认值, defaults 只填充零值字段
	valid := make([]Instrument, 0, len(instruments))
	for i := range instruments {
		ins := &instruments[i]
		if err := defaults.Set(ins); err != nil {
			slog.Error("failed to apply instrument defaults", "symbol", ins.Symbol, "error", err)
			continue
		}
		if err := validate.Struct(ins); err != nil {
			slog.Error("invalid instrument config, skipped", "symbol", ins.Symbol, "error", err)
			continue
		}
		valid = append(valid, *ins)
	}
	return valid
}

// LoadMonitor 加载全局调度配置
func LoadMonitor() (Monitor, error) {
	var m Monitor
	if err := defaults.Set(&m); err != nil {
		return Monitor{}, err
	}
	if err := viper.UnmarshalKey("monitor", &m); err != nil {
		return Monitor{}, fmt.Errorf("failed to unmarshal monitor config: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return Monitor{}, fmt.Errorf("invalid monitor config: %w", err)
	}
	return m, nil
}
