package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type StorageConfig struct {
	Driver        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	PublicBaseURL string
}

type UploadConfig struct {
	MaxBytes int64
}

type RealtimeConfig struct {
	Channel string
}

type BrokerConfig struct {
	URL string
}

type ConfirmationConfig struct {
	Secret string
	TTL    time.Duration
}

type Config struct {
	Environment  string
	Timezone     *time.Location
	HTTP         HTTPConfig
	DB           DBConfig
	Storage      StorageConfig
	Upload       UploadConfig
	Realtime     RealtimeConfig
	Broker       BrokerConfig
	Confirmation ConfirmationConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("STORAGE_BUCKET", "leak-images")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("REALTIME_CHANNEL", "reports_changes")
	v.SetDefault("CONFIRMATION_TTL", 24*time.Hour)

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("STORAGE_DRIVER"),
			Endpoint:      v.GetString("STORAGE_ENDPOINT"),
			AccessKey:     v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:     v.GetString("STORAGE_SECRET_KEY"),
			UseSSL:        v.GetBool("STORAGE_USE_SSL"),
			Region:        v.GetString("STORAGE_REGION"),
			Bucket:        v.GetString("STORAGE_BUCKET"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Upload: UploadConfig{
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Realtime: RealtimeConfig{
			Channel: v.GetString("REALTIME_CHANNEL"),
		},
		Broker: BrokerConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		Confirmation: ConfirmationConfig{
			Secret: v.GetString("CONFIRMATION_SECRET"),
			TTL:    v.GetDuration("CONFIRMATION_TTL"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	// An empty endpoint with the s3 driver means AWS itself.
	if cfg.Storage.Endpoint == "" && isMinio(cfg.Storage.Driver) {
		cfg.Storage.Endpoint = defaultMinioEndpoint
	}

	loc, err := loadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, err
	}
	cfg.Timezone = loc

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadLocation resolves the zone the dashboard's date filters are read in.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

const defaultMinioEndpoint = "localhost:9000"

func isMinio(driver string) bool {
	d := strings.ToLower(strings.TrimSpace(driver))
	return d == "" || d == "minio"
}

var channelRx = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Confirmation.Secret == "" {
		return fmt.Errorf("CONFIRMATION_SECRET is required")
	}
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	if !channelRx.MatchString(cfg.Realtime.Channel) {
		return fmt.Errorf("REALTIME_CHANNEL must be a lowercase identifier")
	}
	if cfg.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
