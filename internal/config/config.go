package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	// 每个用户每秒允许的写请求数，0 表示不限制
	WriteRate  float64
	WriteBurst int
}

// DatabaseConfig 数据库配置，driver 为 postgres、mysql 或 sqlite
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置；未启用时使用进程内缓存
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig 令牌配置，TokenTTL 单位为秒
type AuthConfig struct {
	JWTSecret string
	TokenTTL  int
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig 统计配置
type MetricsConfig struct {
	CacheTTL       int
	Completion     string
	RequiredShapes []string
}

// 数据库驱动
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// 完成判定规则
const (
	CompletionConfirmed = "confirmed"
	CompletionAny       = "any"
	CompletionAll       = "all"
)

var globalConfig *Config

// Load 加载配置；path 为空或文件不存在时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	// 环境变量
	v.SetEnvPrefix("NEXT_LABEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded")
	}
	return globalConfig
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Metrics.Completion {
	case CompletionConfirmed, CompletionAny, CompletionAll:
	default:
		return fmt.Errorf("unknown completion rule %q", c.Metrics.Completion)
	}
	if c.Auth.JWTSecret == "" && !c.App.Debug {
		return errors.New("auth.jwtSecret is required outside debug mode")
	}
	if c.Server.WriteRate < 0 || c.Server.WriteBurst < 0 {
		return errors.New("server.writeRate and server.writeBurst must not be negative")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.tokenTTL must be positive, got %d", c.Auth.TokenTTL)
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case DriverSQLite:
		return c.Path
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TTL 令牌有效期
func (c *AuthConfig) TTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// TTL 统计结果缓存有效期
func (c *MetricsConfig) TTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "next-label")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", true)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.writeRate", 20)
	v.SetDefault("server.writeBurst", 40)

	// Database
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "next_label")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "next-label.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", 86400)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Metrics
	v.SetDefault("metrics.cacheTTL", 30)
	v.SetDefault("metrics.completion", CompletionConfirmed)
	v.SetDefault("metrics.requiredShapes", []string{})
}
