package health

import (
	"context"
	"fmt"
	"time"

	"github.com/mrp23231/coffee1-bot/internal/platform/database"
	"github.com/mrp23231/coffee1-bot/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// Rebuilder 在Redis从不健康恢复后重建其中的派生数据（排行榜镜像）。
type Rebuilder interface {
	Warmup() error
}

// ping 带超时地探测Redis。
func ping() error {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()
	return database.RDB.Ping(ctx).Err()
}

// PerformCheck 执行一次健康检查，并在检测到恢复时重建镜像。
// 只有重建成功，状态才会翻回健康，避免在镜像为空时走Redis读取路径。
func PerformCheck(rebuilder Rebuilder) {
	wasHealthy := database.IsRedisHealthy()

	if err := ping(); err != nil {
		database.MarkRedisHealthy(false)
		return
	}

	if !wasHealthy {
		fmt.Println("健康检查: Redis已恢复，正在重建排行榜镜像...")
		if err := rebuilder.Warmup(); err != nil {
			fmt.Printf("健康检查错误: 镜像重建失败，保持降级状态: %v\n", err)
			return
		}
	}
	database.MarkRedisHealthy(true)
}

// StartRedisHealthCheck 启动后台循环，定期执行健康检查。
func StartRedisHealthCheck(handle *lifecycle.Handle, rebuilder Rebuilder) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			return
		}
		PerformCheck(rebuilder)
	}
}
