package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MenuConfig struct {
	Addr string `mapstructure:"addr"`
}

type HRConfig struct {
	Addr string `mapstructure:"addr"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // "memory" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
}

type UploadsConfig struct {
	Driver        string `mapstructure:"driver"` // "local" or "s3"
	Dir           string `mapstructure:"dir"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // "memory" or "postgres"
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	BootstrapEmail    string        `mapstructure:"bootstrap_email"`
	BootstrapPassword string        `mapstructure:"bootstrap_password"`
}

type KafkaConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BrokerList  string `mapstructure:"broker_list"`
	OrdersTopic string `mapstructure:"orders_topic"`
	MenuTopic   string `mapstructure:"menu_topic"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type ExportConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
}

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Menu     MenuConfig     `mapstructure:"menu"`
	HR       HRConfig       `mapstructure:"hr"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Export   ExportConfig   `mapstructure:"export"`
}

// SetDefaults registers every key so environment variables can override values
// that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("menu.addr", ":8080")
	v.SetDefault("hr.addr", ":5000")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sqlite_path", "pawonsalam.db")
	v.SetDefault("uploads.driver", "local")
	v.SetDefault("uploads.dir", "public/uploads")
	v.SetDefault("uploads.bucket", "")
	v.SetDefault("uploads.region", "ap-southeast-1")
	v.SetDefault("uploads.public_base_url", "")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("auth.jwt_secret", "supersecretkey")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.bootstrap_email", "")
	v.SetDefault("auth.bootstrap_password", "")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("kafka.orders_topic", "orders.placed")
	v.SetDefault("kafka.menu_topic", "menu.committed")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.region", "ap-southeast-1")
}

// LoadConfig initializes and reads the configuration using Viper. A missing
// config file is fine when cfgFile is empty; defaults and the environment apply.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional, same as in production containers
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("restosuite")
		v.SetConfigType("yaml")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); cfgFile != "" || !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
