package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/KNICEX/option-monitor/internal/config"
	"github.com/KNICEX/option-monitor/internal/service/llm/gemini"
	"github.com/KNICEX/option-monitor/internal/service/monitor"
	"github.com/KNICEX/option-monitor/internal/service/pricefeed"
	binancefeed "github.com/KNICEX/option-monitor/internal/service/pricefeed/binance"
	"github.com/KNICEX/option-monitor/internal/service/pricefeed/sim"
	"github.com/KNICEX/option-monitor/internal/service/strategy"
	"github.com/KNICEX/option-monitor/ioc"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
}

func main() {
	iterations := pflag.Int("iterations", 0, "max iterations, 0 means run until interrupted")
	initViper()

	monitorCfg, err := config.LoadMonitor()
	if err != nil {
		panic(err)
	}
	instruments := config.LoadInstruments()
	if len(instruments) == 0 {
		slog.Warn("no enabled instruments configured, monitoring nothing")
	}

	notifyTimeout := time.Duration(monitorCfg.NotifyTimeoutSeconds) * time.Second
	notifier := ioc.InitNotifier(notifyTimeout)
	recorder := ioc.InitMetrics()

	opts := []monitor.SchedulerOption{
		monitor.WithNotifier(notifier),
		monitor.WithMaxIterations(*iterations),
	}
	if recorder != nil {
		opts = append(opts, monitor.WithRecorder(recorder))
	}
	if geminiCli := ioc.InitGeminiCli(); geminiCli != nil {
		opts = append(opts, monitor.WithLLM(gemini.NewService(geminiCli)))
	}

	// crypto 标的走币安现货价, 其余标的用模拟行情源
	simFeed := sim.NewFeed()
	var cryptoFeed pricefeed.Feed
	hasCrypto := lo.SomeBy(instruments, func(ins config.Instrument) bool {
		return ins.Market == config.MarketCrypto
	})
	if hasCrypto {
		cryptoFeed = binancefeed.NewFeed(ioc.InitBinanceCli())
	}
	feedFor := func(ins config.Instrument) pricefeed.Feed {
		if ins.Market == config.MarketCrypto && cryptoFeed != nil {
			return cryptoFeed
		}
		return simFeed
	}

	registry := strategy.NewRegistry()
	registry.Register("", strategy.NewMomentumStrategy)
	registry.Register("", strategy.NewIVSkewStrategy)

	task := monitor.NewMultiSymbolWatcher(instruments, monitorCfg, feedFor, registry, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting task", "name", task.Name(), "interval_seconds", monitorCfg.UpdateIntervalSeconds)
	if err := task.Run(ctx); err != nil {
		panic(err)
	}
}
