package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port           string
	DBPath         string
	MigrationsPath string
	JWTSecret      string
	AuthRequired   bool
	RulesPath      string
	LogMode        string
	MaxMemory      int64 // 上传缓冲的最大内存（字节）

	Rules Rules
}

// Rules holds the optional YAML rules file: engine tuning that
// operators adjust without rebuilding. A missing pattern list keeps
// the documented defaults; an explicitly empty list disables
// exclusion filtering.
type Rules struct {
	ExcludedNamePatterns      []string `yaml:"excluded_name_patterns"`
	AliasGapMinutes           float64  `yaml:"alias_gap_minutes"`
	ReconnectToleranceSeconds float64  `yaml:"reconnect_tolerance_seconds"`
}

// Load 加载配置
func Load() (*Config, error) {
	// .env 文件可选
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", ":8080"),
		DBPath:         getEnv("DB_PATH", "./data/attendance.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		RulesPath:      getEnv("RULES_PATH", ""),
		LogMode:        getEnv("LOG_MODE", "dev"),
		AuthRequired:   getEnv("AUTH_REQUIRED", "false") == "true",
		MaxMemory:      getEnvInt64("MAX_MEMORY", 64<<20),
	}

	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if cfg.RulesPath != "" {
		rules, err := loadRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	return cfg, nil
}

func loadRules(path string) (Rules, error) {
	var rules Rules

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return rules, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
