package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/mrp23231/coffee1-bot/internal/bot"
	"github.com/mrp23231/coffee1-bot/internal/joke"
	"github.com/mrp23231/coffee1-bot/internal/platform/config"
	"github.com/mrp23231/coffee1-bot/internal/platform/database"
	"github.com/mrp23231/coffee1-bot/internal/platform/health"
	"github.com/mrp23231/coffee1-bot/internal/platform/persist"
	"github.com/mrp23231/coffee1-bot/internal/platform/server"
	"github.com/mrp23231/coffee1-bot/internal/platform/shutdown"
	"github.com/mrp23231/coffee1-bot/internal/platform/startup"
	"github.com/mrp23231/coffee1-bot/internal/ranking"
	"github.com/mrp23231/coffee1-bot/internal/user"
	"github.com/mrp23231/coffee1-bot/pkg/lifecycle"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("未找到.env文件，使用进程环境变量")
	}

	// 缺少必需配置属于致命错误，进程不启动
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	database.InitDB(cfg.Database.URL)
	database.InitRedis(cfg.Database.Redis)

	store := user.NewStore(database.DB)
	cache := user.NewCache()
	mirror := ranking.New(database.RDB, store)
	svc := user.NewService(store, cache, mirror)

	// 水合必须在任何交互处理开始之前完成
	if err := startup.InitializeApplication(store, cache, mirror); err != nil {
		log.Fatalf("应用初始化失败，无法启动: %v", err)
	}

	jokes := joke.NewClient(joke.DefaultURL, cfg.Sync.JokeTimeout)
	tgBot, err := bot.New(cfg.Telegram, svc, mirror, jokes)
	if err != nil {
		log.Fatalf("Telegram初始化失败: %v", err)
	}

	manager := lifecycle.NewManager()

	flushHandle, err := manager.NewServiceHandle("flush-scheduler")
	if err != nil {
		log.Fatalf("%v", err)
	}
	go persist.StartFlushScheduler(flushHandle, svc, cfg.Sync.FlushInterval, cfg.Sync.EvictAfter)

	resetHandle, err := manager.NewServiceHandle("daily-reset")
	if err != nil {
		log.Fatalf("%v", err)
	}
	go persist.StartDailyResetScheduler(resetHandle, svc)

	healthHandle, err := manager.NewServiceHandle("redis-health")
	if err != nil {
		log.Fatalf("%v", err)
	}
	go health.StartRedisHealthCheck(healthHandle, mirror)

	botHandle, err := manager.NewServiceHandle("telegram-poller")
	if err != nil {
		log.Fatalf("%v", err)
	}
	go tgBot.Run(botHandle)

	srv := server.New(cfg.Server, svc, mirror)
	server.Start(srv)

	coordinator := shutdown.NewCoordinator(manager)
	coordinator.ListenForSignalsAndShutdown(srv, tgBot.Stop, svc)
}
