package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	TTL        string `yaml:"ttl"`
	CookieName string `yaml:"cookie_name"`
}

type AuthRoutesConfig struct {
	ProtectedPrefixes []string `yaml:"protected_prefixes"`
	SignInPath        string   `yaml:"sign_in_path"`
	GoodbyePath       string   `yaml:"goodbye_path"`
}

type SocialProviderConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

type ResendConfig struct {
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type RateLimitConfig struct {
	SignInPerMinute int `yaml:"sign_in_per_minute"`
	Burst           int `yaml:"burst"`
}

type ConfigFile struct {
	App      AppConfig                       `yaml:"app"`
	Database DatabaseConfig                  `yaml:"database"`
	Redis    RedisConfig                     `yaml:"redis"`
	Session  SessionConfig                   `yaml:"session"`
	Auth     AuthRoutesConfig                `yaml:"auth"`
	Social   map[string]SocialProviderConfig `yaml:"social"`
	Resend   ResendConfig                    `yaml:"resend"`
	Casbin   CasbinConfig                    `yaml:"casbin"`
	Rate     RateLimitConfig                 `yaml:"rate"`
}

type Config struct {
	Port              string
	BaseURL           string
	GinMode           string
	DSN               string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SessionSecret     string
	SessionIssuer     string
	SessionTTL        time.Duration
	SessionCookieName string
	ProtectedPrefixes []string
	SignInPath        string
	GoodbyePath       string
	Social            map[string]SocialProviderConfig
	ResendAPIKey      string
	ResendFrom        string
	CasbinModelPath   string
	SignInPerMinute   int
	SignInBurst       int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	configFile, err := loadConfigFile(env("AUTHGATE_CONFIG", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	ttl, err := time.ParseDuration(configFile.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}

	cfg := &Config{
		Port:              fmt.Sprintf("%d", configFile.App.Port),
		BaseURL:           configFile.App.BaseURL,
		GinMode:           configFile.App.GinMode,
		DSN:               env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:         env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:     configFile.Redis.Password,
		RedisDB:           configFile.Redis.DB,
		SessionSecret:     env("SESSION_SECRET", configFile.Session.Secret),
		SessionIssuer:     configFile.Session.Issuer,
		SessionTTL:        ttl,
		SessionCookieName: configFile.Session.CookieName,
		ProtectedPrefixes: configFile.Auth.ProtectedPrefixes,
		SignInPath:        configFile.Auth.SignInPath,
		GoodbyePath:       configFile.Auth.GoodbyePath,
		Social:            configFile.Social,
		ResendAPIKey:      env("RESEND_API_KEY", configFile.Resend.APIKey),
		ResendFrom:        configFile.Resend.From,
		CasbinModelPath:   configFile.Casbin.ModelPath,
		SignInPerMinute:   configFile.Rate.SignInPerMinute,
		SignInBurst:       configFile.Rate.Burst,
	}

	cfg.applyDefaults()

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	return cfg, nil
}

// applyDefaults fills the fields the yaml file may omit. The sign-in and
// goodbye paths default to the canonical auth routes so the edge and page
// gates always redirect to the same destination.
func (c *Config) applyDefaults() {
	// A yaml file omitting app.port flattens to "0", which would bind an
	// ephemeral port. Default it before BaseURL derives from it.
	if c.Port == "" || c.Port == "0" {
		c.Port = "3000"
	}
	if len(c.ProtectedPrefixes) == 0 {
		c.ProtectedPrefixes = []string{"/user/", "/admin/"}
	}
	if c.SignInPath == "" {
		c.SignInPath = "/auth/sign-in"
	}
	if c.GoodbyePath == "" {
		c.GoodbyePath = "/auth/goodbye"
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = "authgate.session_token"
	}
	if c.SessionIssuer == "" {
		c.SessionIssuer = "authgate"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 7 * 24 * time.Hour
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + c.Port
	}
	if c.SignInPerMinute == 0 {
		c.SignInPerMinute = 10
	}
	if c.SignInBurst == 0 {
		c.SignInBurst = 10
	}
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
