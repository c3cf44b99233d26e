package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KNICEX/option-monitor/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SendTelegram(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier(Config{
		Telegram: TelegramConfig{Enabled: true, Token: "test-token", ChatID: "42"},
	}, WithTelegramAPI(server.URL))

	result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
	require.NoError(t, err)
	assert.True(t, result["telegram"].Success)
	assert.True(t, result.AllSuccess())

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "42", gotPayload["chat_id"])
	assert.Equal(t, "hello", gotPayload["text"])
	assert.Equal(t, "Markdown", gotPayload["parse_mode"])
}

func TestNotifier_SendDiscord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewNotifier(Config{
		Discord: DiscordConfig{Enabled: true, WebhookURL: server.URL},
	})

	result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
	require.NoError(t, err)
	assert.True(t, result["discord"].Success)
}

func TestNotifier_SendFeishu(t *testing.T) {
	t.Run("code 0 为成功", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":0,"msg":"success"}`))
		}))
		defer server.Close()

		n := NewNotifier(Config{Feishu: FeishuConfig{Enabled: true, WebhookURL: server.URL}})
		result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
		require.NoError(t, err)
		assert.True(t, result["feishu"].Success)
	})

	t.Run("HTTP 200 但业务码非 0 算失败", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":19001,"msg":"param invalid"}`))
		}))
		defer server.Close()

		n := NewNotifier(Config{Feishu: FeishuConfig{Enabled: true, WebhookURL: server.URL}})
		result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
		require.NoError(t, err)
		assert.False(t, result["feishu"].Success)
		assert.Contains(t, result["feishu"].Error, "19001")
	})
}

// 一个渠道挂了不能拖累其他渠道
func TestNotifier_ChannelFailureIsolated(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer healthy.Close()

	n := NewNotifier(Config{
		Discord: DiscordConfig{Enabled: true, WebhookURL: broken.URL},
		Feishu:  FeishuConfig{Enabled: true, WebhookURL: healthy.URL},
	})

	result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.False(t, result["discord"].Success)
	assert.NotEmpty(t, result["discord"].Error)
	assert.True(t, result["feishu"].Success)
	assert.False(t, result.AllSuccess())
}

func TestNotifier_DisabledChannelsSkipped(t *testing.T) {
	n := NewNotifier(Config{})

	result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.True(t, result.AllSuccess())
}

func TestNotifier_IncompleteConfigFails(t *testing.T) {
	n := NewNotifier(Config{
		Telegram: TelegramConfig{Enabled: true}, // 缺 token 和 chat_id
	})

	result, err := n.Send(context.Background(), notification.Message{Text: "hello"})
	require.NoError(t, err)
	assert.False(t, result["telegram"].Success)
}
