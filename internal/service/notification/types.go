package notification

import "context"

type Message struct {
	Text      string
	ImagePath string // 可选附图
}

type ChannelResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeliveryResult 渠道名 -> 投递结果
type DeliveryResult map[string]ChannelResult

func (r DeliveryResult) AllSuccess() bool {
	for _, cr := range r {
		if !cr.Success {
			return false
		}
	}
	return true
}

// Notifier 消息投递能力。
// 调度循环会并发调用 Send, 实现必须是并发安全的, 且不能无限阻塞
// (网络型实现应自带超时, 超时按投递失败处理)。
type Notifier interface {
	Send(ctx context.Context, msg Message) (DeliveryResult, error)
}
