package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是全局配置实例，在LoadConfig成功后可用
var Cfg *Config

// Config 汇总了应用的全部配置项
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

// TelegramConfig 定义了消息平台的配置
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// Debug 开启tgbotapi的请求日志
	Debug bool `mapstructure:"debug"`
}

// DatabaseConfig 定义了持久化存储和Redis的配置
type DatabaseConfig struct {
	// URL 是持久化存储的连接串。postgres://开头时使用Postgres驱动，
	// 否则按SQLite文件路径处理。
	URL   string      `mapstructure:"url"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig 定义了运维HTTP服务的配置
type ServerConfig struct {
	Mode           string   `mapstructure:"mode"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// SyncConfig 定义了缓存同步相关的配置
type SyncConfig struct {
	// FlushInterval 是定时把工作集写回存储的周期
	FlushInterval time.Duration `mapstructure:"flushInterval"`
	// EvictAfter 是干净缓存条目允许的最大闲置时长，超过后在下次flush后被逐出
	EvictAfter time.Duration `mapstructure:"evictAfter"`
	// JokeTimeout 是外部笑话API的请求超时
	JokeTimeout time.Duration `mapstructure:"jokeTimeout"`
}

// LoadConfig 加载配置：可选的config.yaml，环境变量优先。
// DATABASE_URL 和 TELEGRAM_TOKEN 是必需项，缺失时返回错误，进程不应启动。
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 环境变量别名，保持与原部署一致的变量名
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("telegram.token", "TELEGRAM_TOKEN")
	v.BindEnv("database.redis.address", "REDIS_ADDR")
	v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	v.BindEnv("database.redis.db", "REDIS_DB")
	v.BindEnv("server.address", "SERVER_ADDRESS")

	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("sync.flushInterval", 10*time.Minute)
	v.SetDefault("sync.evictAfter", 24*time.Hour)
	v.SetDefault("sync.jokeTimeout", 5*time.Second)

	// 配置文件是可选的，仅靠环境变量也可以启动
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("缺少必需的配置项 DATABASE_URL")
	}
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("缺少必需的配置项 TELEGRAM_TOKEN")
	}

	Cfg = &cfg
	return Cfg, nil
}
