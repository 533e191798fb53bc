package database

import (
	"fmt"
	"sync"
)

// statusManager 线程安全地维护Redis的健康状态。
// 排行榜读取路径依据该状态决定走Redis镜像还是数据库。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

var globalStatus = &statusManager{
	isRedisHealthy: true,
}

// IsRedisHealthy 返回当前Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// MarkRedisHealthy 更新健康状态，只有状态变化时才打印日志。
func MarkRedisHealthy(healthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy != healthy {
		globalStatus.isRedisHealthy = healthy
		if healthy {
			fmt.Println("健康检查: Redis服务状态已更新为 [可用]")
		} else {
			fmt.Println("健康检查警告: Redis服务状态已更新为 [不可用]")
		}
	}
}
