// Package config loads and validates miner configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// analysis itself and for every optional sink (Postgres, Redis, Kafka,
// metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

// Config is the top-level miner configuration.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Search    SearchConfig    `yaml:"search"`
	Output    OutputConfig    `yaml:"output"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AnalysisConfig controls n-gram discovery, thresholds, and the matching
// modes of the containment and incidence stages.
type AnalysisConfig struct {
	// MinimumFrequencyThreshold is the count floor per order. When zero the
	// floor is derived from MinimumFrequencyRatio and the corpus size.
	MinimumFrequencyThreshold int     `yaml:"minimumFrequencyThreshold"`
	MinimumFrequencyRatio     float64 `yaml:"minimumFrequencyRatio"`
	// CandidateLimit keeps the top N candidates per order; 0 is unlimited.
	CandidateLimit  int      `yaml:"candidateLimit"`
	ForceLimit      bool     `yaml:"forceLimit"`
	ContainmentMode string   `yaml:"containmentMode"`
	IncidenceMode   string   `yaml:"incidenceMode"`
	Workers         int      `yaml:"workers"`
	Clusters        []string `yaml:"clusters"`
}

// TokenizerConfig selects the part-of-speech tagger.
type TokenizerConfig struct {
	Tagger string `yaml:"tagger"`
}

// KeywordPattern is one named expression of the keyword search.
type KeywordPattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// SearchConfig drives the keyword-search collaborator. Columns is one of
// TAK, TA, T, A, K.
type SearchConfig struct {
	Columns  string           `yaml:"columns"`
	Patterns []KeywordPattern `yaml:"patterns"`
}

// OutputConfig holds destination paths for the produced tables. An empty
// Path writes the candidate table to stdout.
type OutputConfig struct {
	Path       string `yaml:"path"`
	SearchPath string `yaml:"searchPath"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	Candidates  string `yaml:"candidates"`
	RunComplete string `yaml:"runComplete"`
}

// RedisConfig holds Redis connection and token-cache parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus exposition. A batch run either pushes
// to a Pushgateway (PushURL) or serves /metrics on Port while it runs.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	PushURL string `yaml:"pushUrl"`
	Job     string `yaml:"job"`
}

const (
	ContainmentSubstring     = "substring"
	ContainmentTokenBoundary = "token"

	IncidenceLiteral = "literal"
	IncidencePattern = "pattern"

	TaggerProse = "prose"
	TaggerRules = "rules"
)

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Newf(apperrors.ErrConfiguration, "config",
				"parsing config file %s: %v", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate rejects configurations that would abort a run later on.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.MinimumFrequencyThreshold < 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, "config",
			"minimumFrequencyThreshold must be >= 0, got %d", a.MinimumFrequencyThreshold)
	}
	if a.MinimumFrequencyRatio < 0 || a.MinimumFrequencyRatio > 1 {
		return apperrors.Newf(apperrors.ErrConfiguration, "config",
			"minimumFrequencyRatio must be in [0, 1], got %v", a.MinimumFrequencyRatio)
	}
	if a.CandidateLimit < 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, "config",
			"candidateLimit must be >= 0, got %d", a.CandidateLimit)
	}
	switch a.ContainmentMode {
	case ContainmentSubstring, ContainmentTokenBoundary:
	default:
		return apperrors.Newf(apperrors.ErrConfiguration, "config",
			"unknown containmentMode %q", a.ContainmentMode)
	}
	switch a.IncidenceMode {
	case IncidenceLiteral, IncidencePattern:
	default:
		return apperrors.Newf(apperrors.ErrConfiguration, "config",
			"unknown incidenceMode %q", a.IncidenceMode)
	}
	switch c.Tokenizer.Tagger {
	case TaggerProse, TaggerRules:
	default:
		return apperrors.Newf(apperrors.ErrConfiguration, "config",
			"unknown tagger %q", c.Tokenizer.Tagger)
	}
	for i, p := range c.Search.Patterns {
		if p.Name == "" || p.Pattern == "" {
			return apperrors.Newf(apperrors.ErrConfiguration, "config",
				"search pattern %d needs both name and pattern", i)
		}
	}
	return nil
}

// defaultConfig returns a Config mirroring the reference analysis: 2% of the
// documents as frequency floor and the top 100 candidates per order.
func defaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MinimumFrequencyRatio: 0.02,
			CandidateLimit:        100,
			ContainmentMode:       ContainmentSubstring,
			IncidenceMode:         IncidenceLiteral,
			Workers:               4,
		},
		Tokenizer: TokenizerConfig{
			Tagger: TaggerProse,
		},
		Search: SearchConfig{
			Columns: "TAK",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "terminology",
			User:            "terminology",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				Candidates:  "ngram-candidates",
				RunComplete: "mining.complete",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Job:  "terminology-miner",
		},
	}
}

// applyEnvOverrides reads TM_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TM_MIN_FREQUENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MinimumFrequencyThreshold = n
		}
	}
	if v := os.Getenv("TM_MIN_FREQUENCY_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.MinimumFrequencyRatio = f
		}
	}
	if v := os.Getenv("TM_CANDIDATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.CandidateLimit = n
		}
	}
	if v := os.Getenv("TM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = n
		}
	}
	if v := os.Getenv("TM_TAGGER"); v != "" {
		cfg.Tokenizer.Tagger = v
	}
	if v := os.Getenv("TM_SEARCH_COLUMNS"); v != "" {
		cfg.Search.Columns = v
	}
	if v := os.Getenv("TM_OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("TM_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TM_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TM_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TM_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TM_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TM_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TM_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TM_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TM_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TM_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TM_METRICS_PUSH_URL"); v != "" {
		cfg.Metrics.PushURL = v
	}
}
