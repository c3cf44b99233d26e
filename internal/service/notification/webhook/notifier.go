package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/KNICEX/option-monitor/internal/service/notification"
)

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  string `mapstructure:"chat_id"`
}

type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type FeishuConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Feishu   FeishuConfig   `mapstructure:"feishu"`
}

// Notifier 把消息扇出到 Telegram / Discord / 飞书 webhook。
// 单个渠道失败只记录在对应的 ChannelResult 里, 不影响其他渠道。
// 内部只持有只读配置和自带超时的 http.Client, 并发调用安全。
type Notifier struct {
	cfg Config
	cli *http.Client

	telegramAPI string
}

type Option func(n *Notifier)

func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		n.cli.Timeout = d
	}
}

// WithTelegramAPI 替换 Telegram API 地址, 测试用
func WithTelegramAPI(base string) Option {
	return func(n *Notifier) {
		n.telegramAPI = base
	}
}

func NewNotifier(cfg Config, opts ...Option) *Notifier {
	n := &Notifier{
		cfg:         cfg,
		cli:         &http.Client{Timeout: 10 * time.Second},
		telegramAPI: "https://api.telegram.org",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Send(ctx context.Context, msg notification.Message) (notification.DeliveryResult, error) {
	results := notification.DeliveryResult{}

	if n.cfg.Telegram.Enabled {
		results["telegram"] = n.toResult(n.sendTelegram(ctx, msg), "telegram")
	}
	if n.cfg.Discord.Enabled {
		results["discord"] = n.toResult(n.sendDiscord(ctx, msg), "discord")
	}
	if n.cfg.Feishu.Enabled {
		results["feishu"] = n.toResult(n.sendFeishu(ctx, msg), "feishu")
	}
	return results, nil
}

func (n *Notifier) toResult(err error, channel string) notification.ChannelResult {
	if err != nil {
		slog.Error("failed to deliver notification", "channel", channel, "error", err)
		return notification.ChannelResult{Success: false, Error: err.Error()}
	}
	return notification.ChannelResult{Success: true}
}

func (n *Notifier) sendTelegram(ctx context.Context, msg notification.Message) error {
	if n.cfg.Telegram.Token == "" || n.cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram config incomplete")
	}

	if msg.ImagePath != "" {
		if _, err := os.Stat(msg.ImagePath); err == nil {
			return n.sendTelegramPhoto(ctx, msg)
		}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.telegramAPI, n.cfg.Telegram.Token)
	payload := map[string]any{
		"chat_id":    n.cfg.Telegram.ChatID,
		"text":       msg.Text,
		"parse_mode": "Markdown",
	}
	return n.postJSON(ctx, endpoint, payload, http.StatusOK)
}

func (n *Notifier) sendTelegramPhoto(ctx context.Context, msg notification.Message) error {
	file, err := os.Open(msg.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", filepath.Base(msg.ImagePath))
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, file); err != nil {
		return err
	}
	_ = writer.WriteField("chat_id", n.cfg.Telegram.ChatID)
	_ = writer.WriteField("caption", msg.Text)
	_ = writer.WriteField("parse_mode", "Markdown")
	if err = writer.Close(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendPhoto", n.telegramAPI, n.cfg.Telegram.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := n.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendPhoto status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) sendDiscord(ctx context.Context, msg notification.Message) error {
	if n.cfg.Discord.WebhookURL == "" {
		return fmt.Errorf("discord config incomplete")
	}
	payload := map[string]any{
		"content": msg.Text,
	}
	return n.postJSON(ctx, n.cfg.Discord.WebhookURL, payload, http.StatusOK, http.StatusNoContent)
}

func (n *Notifier) sendFeishu(ctx context.Context, msg notification.Message) error {
	if n.cfg.Feishu.WebhookURL == "" {
		return fmt.Errorf("feishu config incomplete")
	}
	// 飞书发图需要先上传拿 image_key, 这里只发文本
	payload := map[string]any{
		"msg_type": "text",
		"content": map[string]any{
			"text": msg.Text,
		},
	}

	resp, err := n.post(ctx, n.cfg.Feishu.WebhookURL, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu webhook status %d", resp.StatusCode)
	}

	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode feishu response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("feishu webhook code %d: %s", result.Code, result.Msg)
	}
	return nil
}

func (n *Notifier) postJSON(ctx context.Context, url string, payload map[string]any, okStatus ...int) error {
	resp, err := n.post(ctx, url, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	for _, status := range okStatus {
		if resp.StatusCode == status {
			return nil
		}
	}
	return fmt.Errorf("webhook status %d", resp.StatusCode)
}

func (n *Notifier) post(ctx context.Context, url string, payload map[string]any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return n.cli.Do(req)
}
