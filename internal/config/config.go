package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Admin    AdminConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Orders   OrdersConfig
	Log      LogConfig
}

type AppConfig struct {
	Name    string
	Env     string // development / production
	Port    string
	BaseURL string // 決済コールバックURLの組み立てに使う
}

type DatabaseConfig struct {
	Driver          string // postgres / sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Enabled=false ならカートはプロセス内メモリに置く
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// 訪問者セッションcookie
type SessionConfig struct {
	Secret string
	MaxAge int // 秒
	Secure bool
}

type AdminConfig struct {
	Username     string
	Password     string // 平文（起動時にbcrypt化）
	PasswordHash string // bcryptハッシュ（こちらが優先）
	JWTSecret    string
	TokenTTL     time.Duration
}

type PaymentConfig struct {
	BaseURL          string
	SecretKey        string
	PublicKey        string
	RequireSignature bool
	Timeout          time.Duration
}

type StorageConfig struct {
	Driver     string // local / s3
	UploadDir  string
	PublicPath string
	S3         S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string
}

// StrictTransitions=true なら pending→confirmed→shipped→delivered 以外を拒否
type OrdersConfig struct {
	StrictTransitions bool
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

const (
	defaultSessionSecret = "dev_session_secret_change_me"
	defaultJWTSecret     = "dev_secret_change_me"
	defaultAdminPassword = "admin123"
)

// config.toml（任意）と STORE_ プレフィックスの環境変数から読む。
// 優先順位: 環境変数 > config.toml > デフォルト
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// bool のデフォルトtrueは空値と区別できないのでここで入れる
	v.SetDefault("payment.require_signature", true)

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{
			Secret: v.GetString("session.secret"),
			MaxAge: v.GetInt("session.max_age"),
			Secure: v.GetBool("session.secure"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("admin.username"),
			Password:     v.GetString("admin.password"),
			PasswordHash: v.GetString("admin.password_hash"),
			JWTSecret:    v.GetString("admin.jwt_secret"),
			TokenTTL:     v.GetDuration("admin.token_ttl"),
		},
		Payment: PaymentConfig{
			BaseURL:          v.GetString("payment.base_url"),
			SecretKey:        v.GetString("payment.secret_key"),
			PublicKey:        v.GetString("payment.public_key"),
			RequireSignature: v.GetBool("payment.require_signature"),
			Timeout:          v.GetDuration("payment.timeout"),
		},
		Storage: StorageConfig{
			Driver:     v.GetString("storage.driver"),
			UploadDir:  v.GetString("storage.upload_dir"),
			PublicPath: v.GetString("storage.public_path"),
			S3: S3Config{
				Bucket:          v.GetString("storage.s3.bucket"),
				Region:          v.GetString("storage.s3.region"),
				Endpoint:        v.GetString("storage.s3.endpoint"),
				AccessKeyID:     v.GetString("storage.s3.access_key_id"),
				SecretAccessKey: v.GetString("storage.s3.secret_access_key"),
				UsePathStyle:    v.GetBool("storage.s3.use_path_style"),
				PublicBaseURL:   v.GetString("storage.s3.public_base_url"),
			},
		},
		Orders: OrdersConfig{
			StrictTransitions: v.GetBool("orders.strict_transitions"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// 空の項目にデフォルト値を入れる
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
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
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "storefront.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = defaultSessionSecret
	}
	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = 7 * 24 * 60 * 60
	}

	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		cfg.Admin.Password = defaultAdminPassword
	}
	if cfg.Admin.JWTSecret == "" {
		cfg.Admin.JWTSecret = defaultJWTSecret
	}
	if cfg.Admin.TokenTTL == 0 {
		cfg.Admin.TokenTTL = 12 * time.Hour
	}

	if cfg.Payment.BaseURL == "" {
		cfg.Payment.BaseURL = "https://api.paystack.co"
	}
	if cfg.Payment.Timeout == 0 {
		cfg.Payment.Timeout = 15 * time.Second
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "static/uploads"
	}
	if cfg.Storage.PublicPath == "" {
		cfg.Storage.PublicPath = "/static/uploads"
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "us-east-1"
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
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when storage.driver=s3")
		}
	default:
		return fmt.Errorf("storage.driver must be local or s3, got %q", c.Storage.Driver)
	}

	if c.IsProduction() {
		if c.Payment.SecretKey == "" {
			return fmt.Errorf("payment.secret_key is required in production")
		}
		if c.Session.Secret == defaultSessionSecret {
			return fmt.Errorf("session.secret must be set in production")
		}
		if c.Admin.JWTSecret == defaultJWTSecret || len(c.Admin.JWTSecret) < 32 {
			return fmt.Errorf("admin.jwt_secret must be at least 32 characters in production")
		}
		if c.Admin.PasswordHash == "" && c.Admin.Password == defaultAdminPassword {
			return fmt.Errorf("admin.password must be changed in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("session.secure must be true in production")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// postgres用の接続文字列（値はURLエスケープ）
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

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
