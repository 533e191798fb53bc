package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给单个后台服务的生命周期控制器。
type Handle struct {
	ctx context.Context
	// Close 通知Manager该服务已经退出。
	// 服务的Goroutine应该在退出前通过 defer 调用它。
	Close func()
}

// Ctx 返回句柄内部的context，用于传递给需要取消语义的下游调用。
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 返回一个channel，停机信号广播时该channel会被关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 在Done()关闭后返回取消原因。
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 休眠指定时长；如果期间收到停机信号则提前返回错误。
// 后台循环应该用它代替 time.Sleep，保证停机时能立刻唤醒。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)

	select {
	case <-h.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return h.Err()
	case <-timer.C:
		return nil
	}
}
