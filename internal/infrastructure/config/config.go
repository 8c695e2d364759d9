package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Tenancy   TenancyConfig
	DNS       DNSConfig
	RateLimit RateLimitConfig
	Quota     QuotaConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
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
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings.
// An empty Host disables every Redis-backed component.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether Redis is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret          string
	Issuer          string
	SessionDuration time.Duration
}

// CookieConfig holds settings for the session cookie
type CookieConfig struct {
	Name     string
	Domain   string // empty = current host
	Path     string
	Secure   bool
	SameSite string // strict, lax, none
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// TenancyConfig drives host to property resolution
type TenancyConfig struct {
	// RootDomain is the platform's own domain, e.g. "hotelaccelerator.app"
	RootDomain string
	// DevRootDomains are extra roots treated like RootDomain (e.g. "localhost")
	DevRootDomains []string
	// DefaultTenantID is the legacy single-tenant fallback; empty disables it
	DefaultTenantID string
	// TrustRoutingHeaders enables x-tenant-identifier / x-tenant-type
	TrustRoutingHeaders bool
	CacheTTL            time.Duration
	CacheMaxEntries     int64
}

// DNSConfig configures custom-domain verification
type DNSConfig struct {
	Nameservers     []string
	Timeout         time.Duration
	ReverifyEnabled bool
	// ReverifyInterval of 0 disables scheduled re-verification
	ReverifyInterval time.Duration
}

// RateLimitRule is the fixed-window rule of one operation class
type RateLimitRule struct {
	Window      time.Duration
	MaxRequests int
}

// RateLimitConfig configures the request limiter
type RateLimitConfig struct {
	Enabled bool
	Backend string // memory, redis
	MaxKeys int
	Rules   map[string]RateLimitRule
}

// QuotaConfig configures plan ceilings
type QuotaConfig struct {
	SoftLimitPercent int
	// Plans overrides the built-in ceilings: plan -> metric -> limit
	Plans map[string]map[string]int64
}

// StorageConfig holds S3-compatible object storage settings.
// An empty Bucket selects the in-process stub.
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with HOTEL_ prefix (e.g., HOTEL_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom(".", "./backend", "/app")
}

// LoadFrom is Load with explicit config search paths
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("HOTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
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
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			Issuer:          v.GetString("jwt.issuer"),
			SessionDuration: v.GetDuration("jwt.session_duration"),
		},
		Cookie: CookieConfig{
			Name:     v.GetString("cookie.name"),
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Tenancy: TenancyConfig{
			RootDomain:          v.GetString("tenancy.root_domain"),
			DevRootDomains:      v.GetStringSlice("tenancy.dev_root_domains"),
			DefaultTenantID:     v.GetString("tenancy.default_tenant_id"),
			TrustRoutingHeaders: v.GetBool("tenancy.trust_routing_headers"),
			CacheTTL:            v.GetDuration("tenancy.cache_ttl"),
			CacheMaxEntries:     v.GetInt64("tenancy.cache_max_entries"),
		},
		DNS: DNSConfig{
			Nameservers:      v.GetStringSlice("dns.nameservers"),
			Timeout:          v.GetDuration("dns.timeout"),
			ReverifyInterval: v.GetDuration("dns.reverify_interval"),
		},
		RateLimit: RateLimitConfig{
			Enabled: !v.IsSet("rate_limit.enabled") || v.GetBool("rate_limit.enabled"),
			Backend: v.GetString("rate_limit.backend"),
			MaxKeys: v.GetInt("rate_limit.max_keys"),
			Rules:   loadRateLimitRules(v),
		},
		Quota: QuotaConfig{
			SoftLimitPercent: v.GetInt("quota.soft_limit_percent"),
			Plans:            loadQuotaPlans(v),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}
	cfg.DNS.ReverifyEnabled = cfg.DNS.ReverifyInterval > 0

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadRateLimitRules reads [rate_limit.rules.<operation>] tables
func loadRateLimitRules(v *viper.Viper) map[string]RateLimitRule {
	rules := make(map[string]RateLimitRule)
	for op := range v.GetStringMap("rate_limit.rules") {
		prefix := "rate_limit.rules." + op
		rules[op] = RateLimitRule{
			Window:      v.GetDuration(prefix + ".window"),
			MaxRequests: v.GetInt(prefix + ".max_requests"),
		}
	}
	return rules
}

// loadQuotaPlans reads [quota.plans.<plan>] tables
func loadQuotaPlans(v *viper.Viper) map[string]map[string]int64 {
	plans := make(map[string]map[string]int64)
	for plan := range v.GetStringMap("quota.plans") {
		limits := make(map[string]int64)
		for metric := range v.GetStringMap("quota.plans." + plan) {
			limits[metric] = v.GetInt64("quota.plans." + plan + "." + metric)
		}
		plans[plan] = limits
	}
	return plans
}

// DefaultRateLimitRules are used for operations missing from config
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"auth":          {Window: time.Minute, MaxRequests: 5},
		"inbox_write":   {Window: time.Minute, MaxRequests: 10},
		"verify_domain": {Window: time.Minute, MaxRequests: 5},
		"quotas":        {Window: time.Minute, MaxRequests: 30},
		"monitoring":    {Window: time.Minute, MaxRequests: 60},
		"media_upload":  {Window: time.Minute, MaxRequests: 20},
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hotel-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "hotel"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "hotel-backend"
	}
	if cfg.JWT.SessionDuration == 0 {
		cfg.JWT.SessionDuration = 12 * time.Hour
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "hotel_session"
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}
	if cfg.Cookie.SameSite == "" {
		cfg.Cookie.SameSite = "lax"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	// No CORS origin default: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Tenancy.RootDomain == "" {
		cfg.Tenancy.RootDomain = "localhost"
	}
	cfg.Tenancy.RootDomain = strings.ToLower(strings.TrimSuffix(cfg.Tenancy.RootDomain, "."))
	if cfg.Tenancy.CacheTTL == 0 {
		cfg.Tenancy.CacheTTL = 30 * time.Second
	}
	if cfg.Tenancy.CacheMaxEntries == 0 {
		cfg.Tenancy.CacheMaxEntries = 10_000
	}
	if cfg.DNS.Timeout == 0 {
		cfg.DNS.Timeout = 5 * time.Second
	}
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "memory"
	}
	if cfg.RateLimit.MaxKeys == 0 {
		cfg.RateLimit.MaxKeys = 100_000
	}
	for op, rule := range DefaultRateLimitRules() {
		if existing, ok := cfg.RateLimit.Rules[op]; !ok || existing.MaxRequests == 0 || existing.Window == 0 {
			cfg.RateLimit.Rules[op] = rule
		}
	}
	if cfg.Quota.SoftLimitPercent == 0 {
		cfg.Quota.SoftLimitPercent = 80
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
		return fmt.Errorf("rate_limit.backend must be memory or redis, got %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Backend == "redis" && !c.Redis.Enabled() {
		return fmt.Errorf("rate_limit.backend=redis requires redis.host")
	}
	if c.Quota.SoftLimitPercent < 0 || c.Quota.SoftLimitPercent > 100 {
		return fmt.Errorf("quota.soft_limit_percent must be between 0 and 100")
	}
	if c.DNS.ReverifyInterval < 0 {
		return fmt.Errorf("dns.reverify_interval cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if !c.Cookie.Secure {
			return fmt.Errorf("cookie.secure must be true in production")
		}
		if c.Tenancy.RootDomain == "localhost" {
			return fmt.Errorf("tenancy.root_domain must be set in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
