package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"arbScope/internal/registry"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL        string
	Cadence       time.Duration
	CycleDeadline time.Duration
	CallTimeout   time.Duration
	Workers       int
	PinBlock      bool
	MaxRetries    int
	RetryBackoff  time.Duration
	Checkpoint    string
	LogLevel      string
	Sinks         Sinks
	Registry      registry.Spec
}

// Sinks configures the optional cycle outputs. An empty address or path
// disables the corresponding sink.
type Sinks struct {
	JSONLPath              string
	JSONLOpportunitiesOnly bool

	PostgresDSN     string
	PostgresMigrate bool

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisTLS       bool
	RedisChannel   string
	RedisLatestKey string
	RedisLatestTTL time.Duration
	RedisStream    string

	TelegramToken       string
	TelegramChatID      string
	TelegramMaxPerCycle int
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ARBSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("cadence", 15*time.Second)
	v.SetDefault("cycle-deadline", 10*time.Second)
	v.SetDefault("call-timeout", 3*time.Second)
	v.SetDefault("workers", 8)
	v.SetDefault("pin-block", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("redis-channel", "arbscope:cycles")
	v.SetDefault("redis-latest-key", "arbscope:latest")
	v.SetDefault("redis-latest-ttl", 5*time.Minute)
	v.SetDefault("telegram-max-per-cycle", 5)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		Cadence:       v.GetDuration("cadence"),
		CycleDeadline: v.GetDuration("cycle-deadline"),
		CallTimeout:   v.GetDuration("call-timeout"),
		Workers:       v.GetInt("workers"),
		PinBlock:      v.GetBool("pin-block"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		Checkpoint:    v.GetString("checkpoint"),
		LogLevel:      v.GetString("log-level"),
		Sinks: Sinks{
			JSONLPath:              v.GetString("jsonl-out"),
			JSONLOpportunitiesOnly: v.GetBool("jsonl-opportunities-only"),
			PostgresDSN:            v.GetString("pg-dsn"),
			PostgresMigrate:        v.GetBool("pg-migrate"),
			RedisAddr:              v.GetString("redis-addr"),
			RedisPassword:          v.GetString("redis-password"),
			RedisDB:                v.GetInt("redis-db"),
			RedisTLS:               v.GetBool("redis-tls"),
			RedisChannel:           v.GetString("redis-channel"),
			RedisLatestKey:         v.GetString("redis-latest-key"),
			RedisLatestTTL:         v.GetDuration("redis-latest-ttl"),
			RedisStream:            v.GetString("redis-stream"),
			TelegramToken:          v.GetString("telegram-token"),
			TelegramChatID:         v.GetString("telegram-chat-id"),
			TelegramMaxPerCycle:    v.GetInt("telegram-max-per-cycle"),
		},
	}

	if err := v.UnmarshalKey("registry", &cfg.Registry); err != nil {
		return Config{}, fmt.Errorf("decode registry: %w", err)
	}
	cfg.Registry.Pairs = cleanStrings(cfg.Registry.Pairs)

	return cfg, nil
}

// Validate checks settings that do not belong to the registry.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be greater than zero")
	}
	if c.Cadence <= 0 {
		return fmt.Errorf("cadence must be greater than zero")
	}
	if c.CycleDeadline <= 0 {
		return fmt.Errorf("cycle deadline must be greater than zero")
	}
	if c.CycleDeadline >= c.Cadence {
		return fmt.Errorf("cycle deadline %s must be shorter than cadence %s", c.CycleDeadline, c.Cadence)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call timeout must be greater than zero")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if (c.Sinks.TelegramToken == "") != (c.Sinks.TelegramChatID == "") {
		return fmt.Errorf("telegram token and chat id must be set together")
	}
	return nil
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
