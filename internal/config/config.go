package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Gemini    GeminiConfig
	Artifacts ArtifactsConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GeminiConfig configures the explanation gateway. APIKeys holds one or more
// keys; the gateway rotates to the next key when a quota error comes back.
type GeminiConfig struct {
	APIKeys       []string      `yaml:"api_keys"`
	Model         string        `yaml:"model"`
	Temperature   float64       `yaml:"temperature"`
	MaxAttempts   int           `yaml:"max_attempts"`
	Backoff       time.Duration `yaml:"backoff"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// ArtifactsConfig controls the optional JSON audit trail of parsed sheets and
// merged papers. An empty Dir disables it.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("server.body_limit_mb", 10)
	viper.SetDefault("db.path", "database/exam_eval.db")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.temperature", 0.5)
	viper.SetDefault("gemini.max_attempts", 3)
	viper.SetDefault("gemini.backoff", 60)
	viper.SetDefault("gemini.max_concurrent", 1)
	viper.SetDefault("artifacts.dir", "generated_files")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Defaults plus env vars are enough to run.
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			BodyLimit:    viper.GetInt("server.body_limit_mb") * 1024 * 1024,
		},
		DB: DBConfig{
			Path: viper.GetString("db.path"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Gemini: GeminiConfig{
			APIKeys:       viper.GetStringSlice("gemini.api_keys"),
			Model:         viper.GetString("gemini.model"),
			Temperature:   viper.GetFloat64("gemini.temperature"),
			MaxAttempts:   viper.GetInt("gemini.max_attempts"),
			Backoff:       viper.GetDuration("gemini.backoff") * time.Second,
			MaxConcurrent: viper.GetInt("gemini.max_concurrent"),
		},
		Artifacts: ArtifactsConfig{
			Dir: viper.GetString("artifacts.dir"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Override with environment variables if set
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		config.DB.Path = dbPath
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		config.Gemini.APIKeys = strings.Split(keys, ",")
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && len(config.Gemini.APIKeys) == 0 {
		config.Gemini.APIKeys = []string{key}
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if dir := os.Getenv("ARTIFACTS_DIR"); dir != "" {
		config.Artifacts.Dir = dir
	}

	return config, nil
}

// GetDSN returns the sqlite DSN for the evaluation store.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", c.DB.Path)
}
