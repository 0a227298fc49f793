package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Scraper    Scraper    `mapstructure:"scraper"`
	Cache      Cache      `mapstructure:"cache"`
	Grammar    Grammar    `mapstructure:"grammar"`
	Research   Research   `mapstructure:"research"`
	Generation Generation `mapstructure:"generation"`
	Database   Database   `mapstructure:"database"`
	Server     Server     `mapstructure:"server"`
	Batch      Batch      `mapstructure:"batch"`
	Output     Output     `mapstructure:"output"`
	Logging    Logging    `mapstructure:"logging"`
	Analytics  Analytics  `mapstructure:"analytics"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	BodyModel      string  `mapstructure:"body_model"`
	Timeout        string  `mapstructure:"timeout"`
	MaxTokens      int32   `mapstructure:"max_tokens"`
	Temperature    float32 `mapstructure:"temperature"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
}

// Scraper selects and configures the source-text scraper
type Scraper struct {
	Provider   string `mapstructure:"provider"`
	JinaAPIKey string `mapstructure:"jina_api_key"`
	JinaURL    string `mapstructure:"jina_url"`
	Timeout    string `mapstructure:"timeout"`
	UserAgent  string `mapstructure:"user_agent"`
}

// Cache holds scraped-content cache configuration
type Cache struct {
	Backend   string      `mapstructure:"backend"`
	Directory string      `mapstructure:"directory"`
	TTL       string      `mapstructure:"ttl"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Grammar holds LanguageTool configuration
type Grammar struct {
	Enabled       bool     `mapstructure:"enabled"`
	Endpoint      string   `mapstructure:"endpoint"`
	DisabledRules []string `mapstructure:"disabled_rules"`
	Timeout       string   `mapstructure:"timeout"`
}

// Research holds STORM research service configuration
type Research struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Timeout  string `mapstructure:"timeout"`
	Required bool   `mapstructure:"required"`
}

// Generation holds article generation defaults
type Generation struct {
	Language         string  `mapstructure:"language"`
	TopicsCount      int     `mapstructure:"topics_count"`
	HeadlinesCount   int     `mapstructure:"headlines_count"`
	TagsCount        int     `mapstructure:"tags_count"`
	DefaultURL       string  `mapstructure:"default_url"`
	NoveltyThreshold float32 `mapstructure:"novelty_threshold"`
}

// Database holds PostgreSQL configuration
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
	MaxConnections   int    `mapstructure:"max_connections"`
	IdleConnections  int    `mapstructure:"idle_connections"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	MaxConcurrent   int      `mapstructure:"max_concurrent"`
}

// Batch holds offline batch generation configuration
type Batch struct {
	Retries    int     `mapstructure:"retries"`
	RetryDelay string  `mapstructure:"retry_delay"`
	Rate       float64 `mapstructure:"rate"`
}

// Output holds output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
	Format    string `mapstructure:"format"`
}

// Analytics holds PostHog product analytics configuration
type Analytics struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".aigency")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".aigency-cache")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.body_model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.embedding_model", "text-embedding-004")

	viper.SetDefault("scraper.provider", "jina")
	viper.SetDefault("scraper.jina_url", "https://r.jina.ai/")
	viper.SetDefault("scraper.timeout", "30s")
	viper.SetDefault("scraper.user_agent", "Aigency/1.0")

	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.directory", ".aigency-cache")
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.redis.address", "localhost:6379")
	viper.SetDefault("cache.redis.db", 0)

	viper.SetDefault("grammar.enabled", true)
	viper.SetDefault("grammar.endpoint", "http://localhost:8081")
	viper.SetDefault("grammar.disabled_rules", []string{"MORFOLOGIK_RULE_SK"})
	viper.SetDefault("grammar.timeout", "20s")

	viper.SetDefault("research.enabled", false)
	viper.SetDefault("research.endpoint", "http://localhost:8090")
	viper.SetDefault("research.timeout", "10m")
	viper.SetDefault("research.required", false)

	viper.SetDefault("generation.language", "slovak")
	viper.SetDefault("generation.topics_count", 5)
	viper.SetDefault("generation.headlines_count", 3)
	viper.SetDefault("generation.tags_count", 4)
	viper.SetDefault("generation.default_url", DefaultArticleURL)
	viper.SetDefault("generation.novelty_threshold", 0)

	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.idle_connections", 5)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "15m")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.max_concurrent", 50)

	viper.SetDefault("batch.retries", 3)
	viper.SetDefault("batch.retry_delay", "2s")
	viper.SetDefault("batch.rate", 0.5)

	viper.SetDefault("output.directory", "articles")
	viper.SetDefault("output.format", "markdown")

	viper.SetDefault("logging.level", "info")

	viper.SetDefault("analytics.enabled", false)
	viper.SetDefault("analytics.host", "https://us.i.posthog.com")
}

// DefaultArticleURL is the demo source whose text ships with the binary.
const DefaultArticleURL = "https://slovak.statistics.sk/wps/portal/ext/products/informationmessages/inf_sprava_detail/7516cc54-0681-4ae1-b46d-81c1f056461d"

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("scraper.jina_api_key", []string{
		"JINA_API_KEY",
		"JINA_KEY",
	})

	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("cache.redis.address", []string{
		"REDIS_ADDR",
		"REDIS_URL",
	})

	bindEnvKeys("cache.redis.password", []string{
		"REDIS_PASSWORD",
	})

	bindEnvKeys("grammar.endpoint", []string{
		"LANGUAGETOOL_URL",
		"LANGUAGE_TOOL_URL",
	})

	bindEnvKeys("research.endpoint", []string{
		"STORM_URL",
		"STORM_SERVICE_URL",
	})

	bindEnvKeys("analytics.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys("scraper.provider", []string{
		"SCRAPER",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"AIGENCY_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(config *Config) error {
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}

	durations := map[string]string{
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"scraper.timeout":         config.Scraper.Timeout,
		"cache.ttl":               config.Cache.TTL,
		"grammar.timeout":         config.Grammar.Timeout,
		"research.timeout":        config.Research.Timeout,
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
		"batch.retry_delay":       config.Batch.RetryDelay,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func validateConfig(config *Config) error {
	var errors []string

	switch config.Scraper.Provider {
	case "jina", "html":
	default:
		errors = append(errors, fmt.Sprintf("Unknown scraper provider: %s. Supported: jina, html", config.Scraper.Provider))
	}

	switch config.Cache.Backend {
	case "memory", "sqlite":
	case "redis":
		if config.Cache.Redis.Address == "" {
			errors = append(errors, "Redis cache requires an address. Set REDIS_ADDR or cache.redis.address")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown cache backend: %s. Supported: memory, redis, sqlite", config.Cache.Backend))
	}

	switch config.Generation.Language {
	case "slovak", "english":
	default:
		errors = append(errors, fmt.Sprintf("Unsupported language: %s. Supported: slovak, english", config.Generation.Language))
	}

	if config.Generation.HeadlinesCount < 1 || config.Generation.TagsCount < 1 || config.Generation.TopicsCount < 1 {
		errors = append(errors, "generation counts must be positive")
	}

	if config.Analytics.Enabled && config.Analytics.APIKey == "" {
		errors = append(errors, "Analytics enabled but missing API key. Set POSTHOG_API_KEY or analytics.api_key")
	}

	if config.Research.Required && !config.Research.Enabled {
		errors = append(errors, "research.required needs research.enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a validated duration string, falling back when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
