package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Match    MatchConfig
	Number   NumberConfig
	Pair     PairConfig
	Vocab    VocabConfig
}

// DatabaseConfig holds run-history storage configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr      string
	QueueWorkers  int
	QueueSize     int
	RunTimeout    time.Duration
	WatchDebounce time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine       string // "cli" or "lib"
	TesseractBin string
	TessdataDir  string
	Language     string
	PageSegMode  int
	Workers      int
	PageTimeout  time.Duration
	CacheTTL     time.Duration
	SkipHidden   bool
}

// MatchConfig tunes fuzzy field-name matching
type MatchConfig struct {
	SearchThreshold float64
	Distance        int
	AcceptThreshold float64
	MinSubstring    int
}

// NumberConfig tunes the number-likelihood scorer
type NumberConfig struct {
	ConfidenceCutoff  float64
	ReplacementWeight float64
	RegexWeight       float64
	ValueThreshold    float64
}

// PairConfig tunes spatial pairing; MaxDistance 0 means unlimited
type PairConfig struct {
	MaxDistance float64
}

// VocabConfig points at an optional field vocabulary file
type VocabConfig struct {
	File string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "./labresults.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:      getEnv("GRPC_ADDR", ":8080"),
			QueueWorkers:  getEnvAsInt("QUEUE_WORKERS", 1),
			QueueSize:     getEnvAsInt("QUEUE_SIZE", 64),
			RunTimeout:    getEnvAsDuration("RUN_TIMEOUT", 15*time.Minute),
			WatchDebounce: getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
		},
		OCR: OCRConfig{
			Engine:       strings.ToLower(getEnv("OCR_ENGINE", "cli")),
			TesseractBin: getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			Language:     getEnv("OCR_LANG", "eng"),
			PageSegMode:  getEnvAsInt("OCR_PSM", 12),
			Workers:      getEnvAsInt("OCR_WORKERS", 7),
			PageTimeout:  getEnvAsDuration("OCR_PAGE_TIMEOUT", 2*time.Minute),
			CacheTTL:     getEnvAsDuration("OCR_CACHE_TTL", 30*time.Minute),
			SkipHidden:   getEnvAsBool("INGEST_SKIP_HIDDEN", true),
		},
		Match: MatchConfig{
			SearchThreshold: getEnvAsFloat64("MATCH_SEARCH_THRESHOLD", 0.4),
			Distance:        getEnvAsInt("MATCH_DISTANCE", 100),
			AcceptThreshold: getEnvAsFloat64("MATCH_ACCEPT_THRESHOLD", 0.3),
			MinSubstring:    getEnvAsInt("MATCH_MIN_SUBSTRING", 3),
		},
		Number: NumberConfig{
			ConfidenceCutoff:  getEnvAsFloat64("NUMBER_CONFIDENCE_CUTOFF", 90),
			ReplacementWeight: getEnvAsFloat64("NUMBER_REPLACEMENT_WEIGHT", 0.2),
			RegexWeight:       getEnvAsFloat64("NUMBER_REGEX_WEIGHT", 0.3),
			ValueThreshold:    getEnvAsFloat64("NUMBER_VALUE_THRESHOLD", 0.6),
		},
		Pair: PairConfig{
			MaxDistance: getEnvAsFloat64("PAIR_MAX_DISTANCE", 0),
		},
		Vocab: VocabConfig{
			File: getEnv("VOCAB_FILE", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.OCR.Engine != "cli" && c.OCR.Engine != "lib" {
		return NewAppError("CONFIG_ERROR", "OCR_ENGINE must be cli or lib", ErrInvalidInput)
	}
	if c.OCR.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Match.SearchThreshold < 0 || c.Match.SearchThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "MATCH_SEARCH_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	if c.Match.AcceptThreshold < 0 || c.Match.AcceptThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "MATCH_ACCEPT_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	if c.Number.ValueThreshold < 0 || c.Number.ValueThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "NUMBER_VALUE_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	if c.Pair.MaxDistance < 0 {
		return NewAppError("CONFIG_ERROR", "PAIR_MAX_DISTANCE must not be negative", ErrInvalidInput)
	}
	if c.Server.QueueWorkers <= 0 || c.Server.QueueSize <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS and QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
