package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Database  DatabaseConfig
	Discounts DiscountsConfig
	HTTP      HTTPConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CatalogConfig selects where the catalog is loaded from and how hard to try.
type CatalogConfig struct {
	Source       string // file, database
	Path         string
	Terms        []int
	LoadTimeout  time.Duration
	LoadAttempts int
	RetryDelay   time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DiscountsConfig holds the default list-price multipliers per category.
type DiscountsConfig struct {
	Hardware float64
	Software float64
	Support  float64
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Load reads configuration with this priority (highest first):
// 1. FWSEL_ prefixed environment variables (e.g. FWSEL_CATALOG_SOURCE)
// 2. legacy variables (PORT, DB_HOST, ...), also read from a local .env file
// 3. config.yaml in the working directory
// 4. built-in defaults
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/fwselect")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FWSEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	return build(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "firewall-selector")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("catalog.source", SourceFile)
	v.SetDefault("catalog.path", "data/firewalls.json")
	v.SetDefault("catalog.terms", []int{1, 3, 5})
	v.SetDefault("catalog.load_timeout", 10*time.Second)
	v.SetDefault("catalog.load_attempts", 3)
	v.SetDefault("catalog.retry_delay", time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.dbname", "cisco_firewalls")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_idle_time", 30*time.Second)
	v.SetDefault("database.connect_timeout", 2*time.Second)

	v.SetDefault("discounts.hardware", 0.6)
	v.SetDefault("discounts.software", 0.6)
	v.SetDefault("discounts.support", 0.6)

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.allowed_origins", "*")
}

// bindLegacyEnv keeps the variable names of existing deployments working.
func bindLegacyEnv(v *viper.Viper) {
	legacy := map[string]string{
		"app.port":             "PORT",
		"app.env":              "NODE_ENV",
		"database.host":        "DB_HOST",
		"database.port":        "DB_PORT",
		"database.dbname":      "DB_NAME",
		"database.user":        "DB_USER",
		"database.password":    "DB_PASSWORD",
		"http.allowed_origins": "ALLOWED_ORIGINS",
	}
	for key, env := range legacy {
		_ = v.BindEnv(key, "FWSEL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Catalog: CatalogConfig{
			Source:       strings.ToLower(v.GetString("catalog.source")),
			Path:         v.GetString("catalog.path"),
			Terms:        v.GetIntSlice("catalog.terms"),
			LoadTimeout:  v.GetDuration("catalog.load_timeout"),
			LoadAttempts: v.GetInt("catalog.load_attempts"),
			RetryDelay:   v.GetDuration("catalog.retry_delay"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			ConnectTimeout:  v.GetDuration("database.connect_timeout"),
		},
		Discounts: DiscountsConfig{
			Hardware: v.GetFloat64("discounts.hardware"),
			Software: v.GetFloat64("discounts.software"),
			Support:  v.GetFloat64("discounts.support"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			AllowedOrigins:  splitList(v.GetString("http.allowed_origins")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the process cannot run with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required when catalog.source is %q", SourceFile)
		}
	case SourceDatabase:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required when catalog.source is %q", SourceDatabase)
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}
	if c.Catalog.LoadAttempts < 1 {
		return fmt.Errorf("catalog.load_attempts must be at least 1")
	}
	for _, rate := range []float64{c.Discounts.Hardware, c.Discounts.Software, c.Discounts.Support} {
		if rate < 0 {
			return fmt.Errorf("discount rates must not be negative")
		}
	}
	return nil
}

// DSN returns the PostgreSQL URL for the database settings.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.DBName,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	if d.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(d.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
