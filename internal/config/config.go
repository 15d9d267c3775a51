package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Search         SearchConfig         `mapstructure:"search"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Interactions string `mapstructure:"interactions"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string          `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Default int           `mapstructure:"default"`
	Premium int           `mapstructure:"premium"`
	Window  time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SearchConfig holds the fuzzy matching constants. The values are empirically
// tuned against the catalog; changing them shifts what counts as a relevant hit.
type SearchConfig struct {
	RelevanceFloor      float64 `mapstructure:"relevance_floor"`
	SubstringScoreFloor float64 `mapstructure:"substring_score_floor"`
	PrefixBonus         float64 `mapstructure:"prefix_bonus"`
	SuggestLimit        int     `mapstructure:"suggest_limit"`
	MinQueryLength      int     `mapstructure:"min_query_length"`
}

// CacheConfig controls the warm-tier read-through cache in front of the
// recipe catalog. Ranked lists are never cached; they are recomputed on
// every call.
type CacheConfig struct {
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
}

// RecommendationConfig holds the preference-weighted scoring model. The signal
// weights form a fixed linear combination; the two penalties compose
// multiplicatively, recently-viewed applied before already-favorited.
type RecommendationConfig struct {
	RatingWeight      float64 `mapstructure:"rating_weight"`
	CategoryWeight    float64 `mapstructure:"category_weight"`
	CountryWeight     float64 `mapstructure:"country_weight"`
	SearchWeight      float64 `mapstructure:"search_weight"`
	ViewSignalWeight  float64 `mapstructure:"view_signal_weight"`
	RecentViewPenalty float64 `mapstructure:"recent_view_penalty"`
	FavoritePenalty   float64 `mapstructure:"favorite_penalty"`
	RecentViewWindow  int     `mapstructure:"recent_view_window"`
	ColdStartAll      int     `mapstructure:"cold_start_all"`
	ColdStartSubset   int     `mapstructure:"cold_start_subset"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.hot.max_retries", 3)
	viper.SetDefault("redis.hot.pool_size", 10)
	viper.SetDefault("redis.hot.timeout", "5s")
	viper.SetDefault("redis.warm.max_retries", 3)
	viper.SetDefault("redis.warm.pool_size", 5)
	viper.SetDefault("redis.warm.timeout", "10s")

	// Kafka defaults (an empty broker list disables the event stream)
	viper.SetDefault("kafka.topics.interactions", "interaction-events")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.rate_limit.default", 1000)
	viper.SetDefault("auth.rate_limit.premium", 10000)
	viper.SetDefault("auth.rate_limit.window", "1h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Search defaults
	viper.SetDefault("search.relevance_floor", 0.45)
	viper.SetDefault("search.substring_score_floor", 0.6)
	viper.SetDefault("search.prefix_bonus", 0.15)
	viper.SetDefault("search.suggest_limit", 8)
	viper.SetDefault("search.min_query_length", 2)

	// Cache defaults
	viper.SetDefault("cache.catalog_ttl", "5m")

	// Recommendation defaults
	viper.SetDefault("recommendation.rating_weight", 0.2)
	viper.SetDefault("recommendation.category_weight", 0.4)
	viper.SetDefault("recommendation.country_weight", 0.3)
	viper.SetDefault("recommendation.search_weight", 0.2)
	viper.SetDefault("recommendation.view_signal_weight", 0.3)
	viper.SetDefault("recommendation.recent_view_penalty", 0.5)
	viper.SetDefault("recommendation.favorite_penalty", 0.3)
	viper.SetDefault("recommendation.recent_view_window", 20)
	viper.SetDefault("recommendation.cold_start_all", 3)
	viper.SetDefault("recommendation.cold_start_subset", 5)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
