package schedule

import "context"

// Task 可被调度执行的任务。Run 阻塞直到任务结束或 ctx 取消。
type Task interface {
	Run(ctx context.Context) error
	Name() string
}
