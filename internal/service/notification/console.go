package notification

import (
	"context"
	"fmt"
)

// ConsoleNotifier 没有配置任何渠道时的兜底实现, 直接打到标准输出
type ConsoleNotifier struct{}

func NewConsoleNotifier() Notifier {
	return ConsoleNotifier{}
}

func (ConsoleNotifier) Send(ctx context.Context, msg Message) (DeliveryResult, error) {
	fmt.Println("==== NOTIFICATION ====")
	fmt.Println(msg.Text)
	if msg.ImagePath != "" {
		fmt.Println("附图:", msg.ImagePath)
	}
	fmt.Println("======================")
	return DeliveryResult{
		"console": {Success: true},
	}, nil
}
