package ioc

import (
	"log/slog"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/notification"
	"github.com/KNICEX/option-monitor/internal/service/notification/webhook"
	"github.com/spf13/viper"
)

// InitNotifier 按 notify 配置构建 webhook 通知器,
// 一个渠道都没启用时退回控制台输出
func InitNotifier(timeout time.Duration) notification.Notifier {
	var cfg webhook.Config
	if err := viper.UnmarshalKey("notify", &cfg); err != nil {
		panic(err)
	}

	if !cfg.Telegram.Enabled && !cfg.Discord.Enabled && !cfg.Feishu.Enabled {
		slog.Warn("no notification channel enabled, using console notifier")
		return notification.NewConsoleNotifier()
	}
	return webhook.NewNotifier(cfg, webhook.WithTimeout(timeout))
}
