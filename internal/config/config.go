package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default configuration values
const (
	DefaultPort             = "8080"
	DefaultPresenceInterval = 5 * time.Second
	DefaultClientBuffer     = 256
	DefaultTicketTTL        = 72 * time.Hour
	DefaultLogLevel         = "info"
)

// Config holds application configuration
type Config struct {
	Port string

	// Hub
	PresenceInterval time.Duration
	ClientBuffer     int

	// Anonymous tickets. An empty secret makes the server generate one per process.
	JWTSecret string
	TicketTTL time.Duration

	// Optional side stores; empty disables them.
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string

	// Empty disables the Telegram transport.
	TelegramBotToken string

	LogLevel string

	// Empty allows any origin.
	AllowedOrigins []string
}

// Options for loading config with CLI flag overrides
type Options struct {
	ConfigFile       string
	EnvFile          string
	Port             string
	LogLevel         string
	PresenceInterval time.Duration
	DatabaseDSN      string
	RedisAddr        string
}

// fileConfig is the [server] table of the TOML config file.
type fileConfig struct {
	Server struct {
		Port             string   `toml:"port"`
		PresenceInterval string   `toml:"presence_interval"`
		ClientBuffer     int      `toml:"client_buffer"`
		JWTSecret        string   `toml:"jwt_secret"`
		TicketTTL        string   `toml:"ticket_ttl"`
		DatabaseDSN      string   `toml:"database_dsn"`
		RedisAddr        string   `toml:"redis_addr"`
		RedisPassword    string   `toml:"redis_password"`
		TelegramBotToken string   `toml:"telegram_bot_token"`
		LogLevel         string   `toml:"log_level"`
		AllowedOrigins   []string `toml:"allowed_origins"`
	} `toml:"server"`
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (a .env file is loaded first and never overrides the real environment)
// 3. TOML file from Options.ConfigFile or CONFIG_FILE
// 4. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:             DefaultPort,
		PresenceInterval: DefaultPresenceInterval,
		ClientBuffer:     DefaultClientBuffer,
		TicketTTL:        DefaultTicketTTL,
		LogLevel:         DefaultLogLevel,
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := cfg.applyFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyOptions(opts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(content, &fc); err != nil {
		return fmt.Errorf("config: failed to parse config file: %w", err)
	}

	s := fc.Server
	setString(&c.Port, s.Port)
	setString(&c.JWTSecret, s.JWTSecret)
	setString(&c.DatabaseDSN, s.DatabaseDSN)
	setString(&c.RedisAddr, s.RedisAddr)
	setString(&c.RedisPassword, s.RedisPassword)
	setString(&c.TelegramBotToken, s.TelegramBotToken)
	setString(&c.LogLevel, s.LogLevel)
	if s.ClientBuffer != 0 {
		c.ClientBuffer = s.ClientBuffer
	}
	if len(s.AllowedOrigins) > 0 {
		c.AllowedOrigins = s.AllowedOrigins
	}
	if err := setDuration(&c.PresenceInterval, "presence_interval", s.PresenceInterval); err != nil {
		return err
	}
	return setDuration(&c.TicketTTL, "ticket_ttl", s.TicketTTL)
}

func (c *Config) applyEnv() error {
	setString(&c.Port, os.Getenv("PORT"))
	setString(&c.JWTSecret, os.Getenv("JWT_SECRET"))
	setString(&c.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&c.RedisAddr, os.Getenv("REDIS_ADDR"))
	setString(&c.RedisPassword, os.Getenv("REDIS_PASSWORD"))
	setString(&c.TelegramBotToken, os.Getenv("TELEGRAM_BOT_TOKEN"))
	setString(&c.LogLevel, os.Getenv("LOG_LEVEL"))

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CLIENT_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: CLIENT_BUFFER: %w", err)
		}
		c.ClientBuffer = n
	}
	if err := setDuration(&c.PresenceInterval, "PRESENCE_INTERVAL", os.Getenv("PRESENCE_INTERVAL")); err != nil {
		return err
	}
	return setDuration(&c.TicketTTL, "TICKET_TTL", os.Getenv("TICKET_TTL"))
}

func (c *Config) applyOptions(opts Options) {
	setString(&c.Port, opts.Port)
	setString(&c.LogLevel, opts.LogLevel)
	setString(&c.DatabaseDSN, opts.DatabaseDSN)
	setString(&c.RedisAddr, opts.RedisAddr)
	if opts.PresenceInterval > 0 {
		c.PresenceInterval = opts.PresenceInterval
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.PresenceInterval <= 0 {
		errs = append(errs, errors.New("presence interval must be positive"))
	}
	if c.ClientBuffer <= 0 {
		errs = append(errs, errors.New("client buffer must be positive"))
	}
	if c.TicketTTL <= 0 {
		errs = append(errs, errors.New("ticket ttl must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
