package database

import (
	"context"
	"fmt"

	"github.com/mrp23231/coffee1-bot/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是全局的Redis客户端实例
var RDB *redis.Client

// Ctx 是Redis操作使用的全局上下文
var Ctx = context.Background()

// InitRedis 初始化与Redis的连接
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Redis只承载排行榜镜像，连接失败时降级而不是退出
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		fmt.Printf("警告: 无法连接到Redis，排行榜将从数据库降级读取: %v\n", err)
		MarkRedisHealthy(false)
		return
	}

	fmt.Println("Redis 连接成功！")
}
