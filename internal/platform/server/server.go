package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mrp23231/coffee1-bot/internal/platform/config"
	"github.com/mrp23231/coffee1-bot/internal/platform/database"
	"github.com/mrp23231/coffee1-bot/internal/platform/persist"
	"github.com/mrp23231/coffee1-bot/internal/ranking"
	"github.com/mrp23231/coffee1-bot/internal/user"
)

// New 构造运维HTTP服务：健康状态与排行榜的只读端点。
func New(cfg config.ServerConfig, svc *user.Service, mirror *ranking.Mirror) *http.Server {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"redisHealthy":  database.IsRedisHealthy(),
			"cachedUsers":   svc.Cache().Len(),
			"flushFailures": persist.FlushFailures(),
		})
	})

	r.GET("/api/leaderboard", func(c *gin.Context) {
		rows, err := mirror.Top(10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "排行榜暂不可用"})
			return
		}
		type entry struct {
			UserID int64  `json:"userId"`
			Name   string `json:"name"`
			Points int    `json:"points"`
			Level  int    `json:"level"`
			Title  string `json:"title"`
		}
		out := make([]entry, 0, len(rows))
		for _, row := range rows {
			out = append(out, entry{
				UserID: row.UserID,
				Name:   row.Name,
				Points: row.Points,
				Level:  user.Level(row.Points),
				Title:  user.TitleForPoints(row.Points),
			})
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": out})
	})

	return &http.Server{
		Addr:    cfg.Address,
		Handler: r,
	}
}

// Start 异步启动HTTP服务。
func Start(srv *http.Server) {
	go func() {
		fmt.Printf("运维HTTP服务已启动，监听 %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("运维HTTP服务错误: %v\n", err)
		}
	}()
}
