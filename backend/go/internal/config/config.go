package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 存储驱动名称。
const (
	DriverMongo  = "mongodb"
	DriverMemory = "memory"
)

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address             string `yaml:"address" env:"MONGO_URI"`                    // MongoDB 连接 URI
	Username            string `yaml:"username" env:"MONGO_USERNAME"`              // 用户名
	Password            string `yaml:"password" env:"MONGO_PASSWORD"`              // 密码
	Database            string `yaml:"database" env:"MONGO_DATABASE"`              // 数据库名称
	KnowledgeCollection string `yaml:"knowledgeCollection"`                        // 问答对集合
	EntityCollection    string `yaml:"entityCollection"`                           // 实体位置集合
	ConnectTimeout      string `yaml:"connectTimeout" env:"MONGO_CONNECT_TIMEOUT"` // 例如: "10s"
}

// RedisConfig 定义了 Redis 事实缓存的连接配置。
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Address  string `yaml:"address" env:"REDIS_ADDR"` // 例如: "localhost:6379"
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	TTL      string `yaml:"ttl"` // 缓存条目存活时间，为空表示永不过期
}

// KafkaConfig 定义了知识事件发布的配置。
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC"`
}

// DatabaseConfigs 包含所有外部存储的配置。
type DatabaseConfigs struct {
	Driver  string      `yaml:"driver" env:"STORE_DRIVER"` // "mongodb" 或 "memory"
	MongoDB MongoConfig `yaml:"mongodb"`
	Redis   RedisConfig `yaml:"redis"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment" env:"APP_ENV"`
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"` // 日志级别 (例如: "info", "debug")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address        string   `yaml:"address" env:"CHAT_SERVER_ADDRESS"`
	AllowedOrigins []string `yaml:"allowedOrigins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout string   `yaml:"requestTimeout"` // 例如: "15s"
}

// KnowledgeConfig 定义了问答检索的行为。
type KnowledgeConfig struct {
	// MatchThreshold 为模糊匹配阈值，分数必须严格大于该值才算命中。
	// 未配置时为 nil，显式配置的 0 会被保留。
	MatchThreshold  *float64 `yaml:"matchThreshold"`
	FallbackMessage string   `yaml:"fallbackMessage"`
	// FactCacheCapacity 为未启用 Redis 时进程内 LRU 的容量，0 表示不缓存。
	// 进程内缓存看不到其他进程的写入，只适合单进程部署。
	FactCacheCapacity int    `yaml:"factCacheCapacity"`
	FactCacheTTL      string `yaml:"factCacheTTL"` // 例如: "30s"，为空表示不过期
}

// Threshold 返回生效的匹配阈值。
func (k KnowledgeConfig) Threshold() float64 {
	if k.MatchThreshold == nil {
		return DefaultMatchThreshold
	}
	return *k.MatchThreshold
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig 是整个 YAML 文件的根结构。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Logger     LoggerConfig     `yaml:"logger"`
	Server     ServerConfig     `yaml:"server"`
	Databases  DatabaseConfigs  `yaml:"databases"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// 默认值。
const (
	DefaultDatabase            = "moihub_chatbot"
	DefaultKnowledgeCollection = "knowledge_base"
	DefaultEntityCollection    = "entity_relations"
	DefaultMatchThreshold      = 70
	DefaultServerAddress       = ":5000"
	DefaultFallbackMessage     = "I don't know that yet. Can you teach me the correct answer?"
	DefaultKafkaTopic          = "knowledge_events"
)

// LoadConfig 从指定路径加载 YAML 配置，随后加载 .env 并用环境变量覆盖。
//
// 参数:
//
//	path: YAML 配置文件的路径。文件不存在时仅使用环境变量和默认值。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// 没有配置文件时完全依赖环境变量
	default:
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}

	// .env 是可选的，已存在的环境变量不会被覆盖
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("加载 .env 失败: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "chat_service"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultServerAddress
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Databases.Driver == "" {
		c.Databases.Driver = DriverMongo
	}
	m := &c.Databases.MongoDB
	if m.Database == "" {
		m.Database = DefaultDatabase
	}
	if m.KnowledgeCollection == "" {
		m.KnowledgeCollection = DefaultKnowledgeCollection
	}
	if m.EntityCollection == "" {
		m.EntityCollection = DefaultEntityCollection
	}
	if c.Databases.Kafka.Topic == "" {
		c.Databases.Kafka.Topic = DefaultKafkaTopic
	}
	if c.Knowledge.MatchThreshold == nil {
		threshold := float64(DefaultMatchThreshold)
		c.Knowledge.MatchThreshold = &threshold
	}
	if c.Knowledge.FallbackMessage == "" {
		c.Knowledge.FallbackMessage = DefaultFallbackMessage
	}
}

// Validate 检查配置的一致性。
func (c *AppConfig) Validate() error {
	switch c.Databases.Driver {
	case DriverMongo:
		if c.Databases.MongoDB.Address == "" {
			return errors.New("未配置 MongoDB 地址 (databases.mongodb.address 或 MONGO_URI)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("未知的存储驱动: %s", c.Databases.Driver)
	}
	if t := c.Knowledge.Threshold(); t < 0 || t >= 100 {
		return fmt.Errorf("匹配阈值必须位于 [0, 100) 区间: %v", t)
	}
	if c.Knowledge.FactCacheCapacity < 0 {
		return fmt.Errorf("factCacheCapacity 不能为负数: %d", c.Knowledge.FactCacheCapacity)
	}
	if c.Databases.Redis.Enabled && c.Databases.Redis.Address == "" {
		return errors.New("已启用 Redis 但未配置地址")
	}
	if c.Databases.Kafka.Enabled && len(c.Databases.Kafka.Brokers) == 0 {
		return errors.New("已启用 Kafka 但未配置 brokers")
	}
	for name, d := range map[string]string{
		"databases.mongodb.connectTimeout":  c.Databases.MongoDB.ConnectTimeout,
		"databases.redis.ttl":               c.Databases.Redis.TTL,
		"server.requestTimeout":             c.Server.RequestTimeout,
		"knowledge.factCacheTTL":            c.Knowledge.FactCacheTTL,
		"middleware.circuitBreaker.timeout": c.Middleware.CircuitBreaker.Timeout,
	} {
		if _, err := ParseDuration(d); err != nil {
			return fmt.Errorf("%s 无效: %w", name, err)
		}
	}
	return nil
}

// ParseDuration 解析可选的时长配置，空字符串返回 0。
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
