package ioc

import (
	"log/slog"
	"net/http"

	"github.com/KNICEX/option-monitor/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

// InitMetrics 按配置启用 Prometheus 指标和 /metrics 端点, 未启用时返回 nil
func InitMetrics() *metrics.Recorder {
	type Config struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("metrics", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}

	recorder := metrics.New()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
			slog.Error("metrics endpoint stopped", "addr", cfg.Addr, "error", err)
		}
	}()
	slog.Info("metrics endpoint listening", "addr", cfg.Addr)
	return recorder
}
