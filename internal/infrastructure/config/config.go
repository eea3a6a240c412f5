package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Store       StoreConfig       `mapstructure:"store"`
	External    ExternalConfig    `mapstructure:"external"`
	Engine      EngineConfig      `mapstructure:"engine"`
	ResultCache ResultCacheConfig `mapstructure:"result_cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
	LogDir      string            `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// StoreConfig 鍵值儲存設定
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // memory | redis | badger
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db"`
	BadgerPath string `mapstructure:"badger_path"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// ExternalConfig 外部食譜 API 設定
type ExternalConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	BreakerRequests uint32        `mapstructure:"breaker_requests"`
	BreakerInterval time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// EngineConfig 推薦引擎設定
type EngineConfig struct {
	SourceTimeout      time.Duration `mapstructure:"source_timeout"`
	MaxResults         int           `mapstructure:"max_results"`
	IncludeExternal    bool          `mapstructure:"include_external"`
	IncludeSynthesized bool          `mapstructure:"include_synthesized"`
	DefaultServings    int           `mapstructure:"default_servings"`
	DefaultCookingTime int           `mapstructure:"default_cooking_time"`
}

// ResultCacheConfig 食譜結果快取設定
type ResultCacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只用環境變數與預設值
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("external.api_key", "SPOONACULAR_API_KEY")
	v.BindEnv("external.enabled", "EXTERNAL_ENABLED")
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("store.redis_addr", "REDIS_ADDR")
	v.BindEnv("store.badger_path", "BADGER_PATH")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "external_api_key:", maskAPIKey(v.GetString("external.api_key")), "store_backend:", v.GetString("store.backend"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 沒有金鑰時外部來源直接停用
	if config.External.APIKey == "" {
		config.External.Enabled = false
	}

	return &config, nil
}

// Default 回傳只含預設值的設定，不讀取環境變數
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return &config
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-engine")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 儲存設定
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.badger_path", "data/badger")
	v.SetDefault("store.key_prefix", "recipe-engine:")

	// 外部食譜 API 設定
	v.SetDefault("external.enabled", true)
	v.SetDefault("external.base_url", "https://api.spoonacular.com")
	v.SetDefault("external.timeout", "3s")
	v.SetDefault("external.cache_ttl", "10m")
	v.SetDefault("external.breaker_requests", 5)
	v.SetDefault("external.breaker_interval", "1m")
	v.SetDefault("external.breaker_timeout", "2m")

	// 引擎設定
	v.SetDefault("engine.source_timeout", "3s")
	v.SetDefault("engine.max_results", 10)
	v.SetDefault("engine.include_external", true)
	v.SetDefault("engine.include_synthesized", true)
	v.SetDefault("engine.default_servings", 2)
	v.SetDefault("engine.default_cooking_time", 30)

	// 結果快取設定
	v.SetDefault("result_cache.ttl", "24h")
	v.SetDefault("result_cache.max_entries", 50)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Store.Backend {
	case "memory":
	case "redis":
		if config.Store.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis store")
		}
	case "badger":
		if config.Store.BadgerPath == "" {
			return fmt.Errorf("badger path is required for badger store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	if config.ResultCache.TTL <= 0 {
		return fmt.Errorf("invalid result cache ttl")
	}
	if config.ResultCache.MaxEntries <= 0 {
		return fmt.Errorf("invalid result cache max entries")
	}
	if config.Engine.SourceTimeout <= 0 {
		return fmt.Errorf("invalid engine source timeout")
	}
	if config.Engine.MaxResults <= 0 {
		return fmt.Errorf("invalid engine max results")
	}
	if config.External.CacheTTL <= 0 {
		return fmt.Errorf("invalid external cache ttl")
	}

	return nil
}
