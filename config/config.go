package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // messaging-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Redis struct {
	URL string `yaml:"url"` // redis://host:port/db
}

type Auth struct {
	PublicKeyPath string `yaml:"publicKeyPath"` // PEM с публичным ключом auth-сервиса
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
}

type WS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"` // пусто — origin не проверяется
	ConnPerMinute  int      `yaml:"connPerMinute"`  // лимит подключений с одного IP в минуту
	MsgPerMinute   int      `yaml:"msgPerMinute"`   // лимит сообщений одного пользователя в минуту
	ContactPerHour int      `yaml:"contactPerHour"` // лимит contact-заявок с одного IP в час
	MaxMessageLen  int      `yaml:"maxMessageLen"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Auth     Auth     `yaml:"auth"`
	WS       WS       `yaml:"ws"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Auth.PublicKeyPath == "" {
		return errors.New("auth.publicKeyPath is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "messaging-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.WS.ConnPerMinute <= 0 {
		c.WS.ConnPerMinute = 60
	}
	if c.WS.MsgPerMinute <= 0 {
		c.WS.MsgPerMinute = 120
	}
	if c.WS.ContactPerHour <= 0 {
		c.WS.ContactPerHour = 20
	}
	if c.WS.MaxMessageLen <= 0 {
		c.WS.MaxMessageLen = 5000
	}
	return nil
}
