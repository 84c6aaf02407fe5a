package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	GRPC         GRPCConfig         `yaml:"grpc"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Notification NotificationConfig `yaml:"notification"`
	ETA          ETAConfig          `yaml:"eta"`
	Twilio       TwilioConfig       `yaml:"twilio"`
	Lock         LockConfig         `yaml:"lock"`
}

type HTTPConfig struct {
	Address     string `yaml:"address" validate:"required"`
	ServiceName string `yaml:"service_name"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"gt=0"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL renders the connection string in URL form for the given scheme (e.g. "pgx5").
func (d DatabaseConfig) URL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BusLocationTopic   string   `yaml:"bus_location_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type NotificationConfig struct {
	ThresholdMinutes int64 `yaml:"threshold_minutes" validate:"gte=0"`
}

type ETAConfig struct {
	APIKey          string `yaml:"api_key"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" validate:"gt=0"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" validate:"gte=0"`
	Concurrency     int    `yaml:"concurrency" validate:"gte=0"`
}

func (e ETAConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func (e ETAConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSeconds) * time.Second
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
	VoiceURL   string `yaml:"voice_url" validate:"omitempty,url"`
}

type LockConfig struct {
	TTLSeconds         int `yaml:"ttl_seconds" validate:"gt=0"`
	WaitTimeoutSeconds int `yaml:"wait_timeout_seconds" validate:"gt=0"`
}

func (l LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLSeconds) * time.Second
}

func (l LockConfig) WaitTimeout() time.Duration {
	return time.Duration(l.WaitTimeoutSeconds) * time.Second
}

const (
	DefaultThresholdMinutes = 10
	DefaultETAEndpoint      = "https://maps.googleapis.com/maps/api/distancematrix/json"
	DefaultServiceName      = "Bus Reminder System"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080", ServiceName: DefaultServiceName},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "bus_reminder",
			SSLMode: "disable",
		},
		Kafka: KafkaConfig{
			BusLocationTopic: "bus-location-updates",
			GroupID:          "bus-reminder-group",
		},
		Notification: NotificationConfig{ThresholdMinutes: DefaultThresholdMinutes},
		ETA: ETAConfig{
			Endpoint:        DefaultETAEndpoint,
			TimeoutSeconds:  10,
			CacheTTLSeconds: 60,
			Concurrency:     4,
		},
		Lock: LockConfig{TTLSeconds: 30, WaitTimeoutSeconds: 15},
	}
}

// applyEnv lets environment variables override file values, e.g.
// NOTIFICATION_THRESHOLD_MINUTES or TWILIO_AUTH_TOKEN.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	str("http.address", &cfg.HTTP.Address)
	str("grpc.address", &cfg.GRPC.Address)
	str("database.host", &cfg.Database.Host)
	num("database.port", &cfg.Database.Port)
	str("database.user", &cfg.Database.User)
	str("database.password", &cfg.Database.Password)
	str("database.name", &cfg.Database.Name)
	str("redis.addr", &cfg.Redis.Addr)
	str("redis.password", &cfg.Redis.Password)
	if v.IsSet("kafka.brokers") {
		cfg.Kafka.Brokers = strings.Split(v.GetString("kafka.brokers"), ",")
	}
	if v.IsSet("notification.threshold.minutes") {
		cfg.Notification.ThresholdMinutes = v.GetInt64("notification.threshold.minutes")
	}
	str("eta.api_key", &cfg.ETA.APIKey)
	str("eta.endpoint", &cfg.ETA.Endpoint)
	str("twilio.account_sid", &cfg.Twilio.AccountSID)
	str("twilio.auth_token", &cfg.Twilio.AuthToken)
	str("twilio.from_number", &cfg.Twilio.FromNumber)
	str("twilio.voice_url", &cfg.Twilio.VoiceURL)
}
