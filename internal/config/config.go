package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
	DriverRedis  = "redis"

	MailSES      = "ses"
	MailSendGrid = "sendgrid"
	MailLog      = "log"
)

type Config struct {
	App         AppConfig
	Log         LogConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	StoreDriver string
	QueueDriver string
	JWT         JWTConfig
	Mail        MailConfig
	SMS         SMSConfig
	Dispatch    DispatchConfig
	CORSOrigins string
}

type AppConfig struct {
	Host        string
	Port        string
	Environment string
}

func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxOpen  int
	MaxIdle  int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type MailConfig struct {
	Provider       string
	From           string
	FromName       string
	SendGridAPIKey string
	AWSRegion      string
}

type SMSConfig struct {
	Enabled   bool
	SenderID  string
	AWSRegion string
}

type DispatchConfig struct {
	SlipStart int64
	Currency  string
	Mailbox   string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("mail.sender.name", "MAIL_FROM_NAME")

	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", "3001")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "nomorebugs")
	v.SetDefault("db.max.open", 25)
	v.SetDefault("db.max.idle", 5)
	v.SetDefault("store.driver", DriverMySQL)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.driver", DriverRedis)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("mail.provider", MailLog)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.sender.name", "No More Bugs")
	v.SetDefault("sendgrid.api.key", "")
	v.SetDefault("aws.region", "ap-south-1")
	v.SetDefault("sms.enabled", false)
	v.SetDefault("sms.sender.id", "NOMOREBUGS")
	v.SetDefault("slip.start", 10001)
	v.SetDefault("currency", "LKR")
	v.SetDefault("dispatch.mailbox", "")
	v.SetDefault("cors.origins", "*")
	return v
}

// Load reads .env (or ENV_FILE) and the environment into a validated Config.
func Load() (*Config, error) {
	LoadEnv(GetEnv("ENV_FILE", ".env"))
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Host:        v.GetString("app.host"),
			Port:        v.GetString("app.port"),
			Environment: v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			MaxOpen:  v.GetInt("db.max.open"),
			MaxIdle:  v.GetInt("db.max.idle"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		StoreDriver: strings.ToLower(v.GetString("store.driver")),
		QueueDriver: strings.ToLower(v.GetString("queue.driver")),
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		Mail: MailConfig{
			Provider:       strings.ToLower(v.GetString("mail.provider")),
			From:           v.GetString("mail.from"),
			FromName:       v.GetString("mail.sender.name"),
			SendGridAPIKey: v.GetString("sendgrid.api.key"),
			AWSRegion:      v.GetString("aws.region"),
		},
		SMS: SMSConfig{
			Enabled:   v.GetBool("sms.enabled"),
			SenderID:  v.GetString("sms.sender.id"),
			AWSRegion: v.GetString("aws.region"),
		},
		Dispatch: DispatchConfig{
			SlipStart: v.GetInt64("slip.start"),
			Currency:  v.GetString("currency"),
			Mailbox:   v.GetString("dispatch.mailbox"),
		},
		CORSOrigins: v.GetString("cors.origins"),
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
		if cfg.App.IsProduction() {
			cfg.Log.Format = "json"
		}
	}
	if cfg.Dispatch.Mailbox == "" {
		cfg.Dispatch.Mailbox = cfg.Mail.From
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	switch c.StoreDriver {
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.QueueDriver {
	case DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown QUEUE_DRIVER %q", c.QueueDriver)
	}

	switch c.Mail.Provider {
	case MailLog:
	case MailSES:
		if c.Mail.From == "" {
			return fmt.Errorf("MAIL_FROM is required for the ses provider")
		}
	case MailSendGrid:
		if c.Mail.From == "" || c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("MAIL_FROM and SENDGRID_API_KEY are required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
	}

	if c.Dispatch.SlipStart < 1 {
		return fmt.Errorf("SLIP_START must be positive")
	}
	return nil
}
