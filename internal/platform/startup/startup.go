package startup

import (
	"fmt"

	"github.com/mrp23231/coffee1-bot/internal/platform/database"
	"github.com/mrp23231/coffee1-bot/internal/ranking"
	"github.com/mrp23231/coffee1-bot/internal/user"
)

// InitializeApplication 是应用启动时的初始化总入口：
// 迁移表结构、把全部用户水合进工作集缓存、重建排行榜镜像。
// 必须在任何交互处理器开始消费事件之前运行完成。
func InitializeApplication(store *user.Store, cache *user.Cache, mirror *ranking.Mirror) error {
	fmt.Println("开始应用初始化...")

	if err := user.PrimeCachedDB(store, cache); err != nil {
		return err
	}

	if database.IsRedisHealthy() {
		if err := mirror.Warmup(); err != nil {
			// 镜像只是加速层，失败时降级而不是阻止启动
			fmt.Printf("警告: 排行榜镜像预热失败，标记Redis为不可用: %v\n", err)
			database.MarkRedisHealthy(false)
		}
	}

	fmt.Println("应用初始化完成！")
	return nil
}
