package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrp23231/coffee1-bot/internal/platform/persist"
	"github.com/mrp23231/coffee1-bot/internal/user"
	"github.com/mrp23231/coffee1-bot/pkg/lifecycle"
)

// Coordinator 编排应用的优雅停机流程。
type Coordinator struct {
	Manager *lifecycle.Manager
}

// NewCoordinator 创建停机协调器。
func NewCoordinator(mgr *lifecycle.Manager) *Coordinator {
	return &Coordinator{Manager: mgr}
}

// ListenForSignalsAndShutdown 阻塞等待停机信号，然后按顺序关闭：
// 停止接收平台事件 → 关闭运维HTTP服务 → 广播停机并等待后台服务退出 →
// 最后执行一次尽力而为的flush。flush失败只记录，不阻止退出。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server, stopBot func(), svc *user.Service) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n收到关闭信号，开始优雅停机...")

	// 先停止接收新的平台事件
	stopBot()

	if server != nil {
		httpTimeout := 10 * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("HTTP服务器关闭错误: %v\n", err)
		} else {
			fmt.Println("HTTP服务器已关闭。")
		}
	}

	gracefulTimeout := 30 * time.Second
	fmt.Printf("等待最多 %v 以完成后台任务...\n", gracefulTimeout)
	c.Manager.Shutdown()

	if remaining := c.Manager.WaitWithTimeout(gracefulTimeout); len(remaining) == 0 {
		fmt.Println("所有后台服务已优雅关闭。")
	} else {
		fmt.Printf("停机超时，以下服务未能退出: %v\n", remaining)
	}

	persist.FinalFlush(svc)
	fmt.Println("优雅停机完成。")
}
