package llm

import (
	"context"
)

type Question struct {
	Content string
}

type Answer struct {
	Content     string
	InputToken  int
	OutputToken int
}

// Service 文本生成能力, 市场摘要走这里, 失败时调用方自行降级
type Service interface {
	AskOnce(ctx context.Context, q Question) (Answer, error)
}
