package persist

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrp23231/coffee1-bot/internal/user"
	"github.com/mrp23231/coffee1-bot/pkg/lifecycle"
)

// storeMutex 是所有写库路径的统一串行点：
// 定时flush、每日重置和停机前的最终flush都必须持有它，
// 保证这些跨用户的写操作之间互不并发。
var storeMutex sync.Mutex

// flushFailures 统计flush中单用户写回失败的累计次数，暴露给运维端点。
var flushFailures atomic.Uint64

// FlushFailures 返回累计的flush失败次数。
func FlushFailures() uint64 {
	return flushFailures.Load()
}

// RunFlush 在串行点内执行一次完整的flush，并在成功后逐出闲置条目。
// 互斥锁保证同一时间最多一轮flush在跑，后到者排队而不是并发。
func RunFlush(svc *user.Service, evictAfter time.Duration) (flushed, failed int) {
	storeMutex.Lock()
	defer storeMutex.Unlock()

	flushed, failed = svc.Cache().FlushAll(svc.Store())
	if failed > 0 {
		flushFailures.Add(uint64(failed))
	}
	if evictAfter > 0 {
		if evicted := svc.Cache().EvictIdle(evictAfter); evicted > 0 {
			fmt.Printf("同步调度器: 逐出 %d 个闲置缓存条目。\n", evicted)
		}
	}
	return flushed, failed
}

// StartFlushScheduler 启动定时持久化循环：每隔interval把工作集写回存储。
func StartFlushScheduler(handle *lifecycle.Handle, svc *user.Service, interval, evictAfter time.Duration) {
	defer handle.Close()
	fmt.Println("定时持久化调度器已启动。")

	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("定时持久化调度器: 休眠被中断，正在关闭...")
			return
		}

		flushed, failed := RunFlush(svc, evictAfter)
		if failed > 0 {
			fmt.Printf("定时持久化调度器: 本轮写回 %d 个用户，失败 %d 个。\n", flushed, failed)
		} else if flushed > 0 {
			fmt.Printf("定时持久化调度器: 本轮写回 %d 个用户。\n", flushed)
		}
	}
}

// untilNextMidnight 返回距下一个本地零点的时长。
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}

// StartDailyResetScheduler 启动每日重置循环：每个本地零点执行一次重置。
// 重置同时作用于存储和工作集缓存，并与flush共用串行点，
// 否则缓存里未写回的旧每日状态会在下一轮flush时把重置结果覆盖掉。
func StartDailyResetScheduler(handle *lifecycle.Handle, svc *user.Service) {
	defer handle.Close()
	fmt.Println("每日重置调度器已启动。")

	for {
		if err := handle.Sleep(untilNextMidnight(time.Now())); err != nil {
			fmt.Println("每日重置调度器: 休眠被中断，正在关闭...")
			return
		}

		if err := RunDailyReset(svc); err != nil {
			fmt.Printf("每日重置调度器错误: %v\n", err)
		}
	}
}

// RunDailyReset 在串行点内执行一次每日重置：
// 先把存储中过期的每日任务状态清除并全量盖章，再把缓存对齐到同样的状态。
func RunDailyReset(svc *user.Service) error {
	storeMutex.Lock()
	defer storeMutex.Unlock()

	today := user.Today()
	if err := svc.Store().ResetStaleDailyState(today); err != nil {
		return err
	}
	svc.Cache().ResetDaily(today)
	fmt.Println("每日任务状态已重置。")
	return nil
}

// FinalFlush 在停机前尽力执行最后一次flush。失败只记录日志，不阻止退出。
func FinalFlush(svc *user.Service) {
	fmt.Println("正在执行最终flush...")
	flushed, failed := RunFlush(svc, 0)
	if failed > 0 {
		fmt.Printf("最终flush: 写回 %d 个用户，失败 %d 个（未写回的窗口数据将丢失）。\n", flushed, failed)
	} else {
		fmt.Printf("最终flush成功，写回 %d 个用户。\n", flushed)
	}
}
