package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	Expiry   ExpiryConfig
	Client   ClientConfig
}

// AppConfig содержит общие настройки приложения
type AppConfig struct {
	Name string
	Env  string
}

// ServerConfig содержит настройки сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig содержит настройки базы данных
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret     string
	ExpireTime time.Duration
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr или путь к файлу
}

// ExpiryConfig содержит настройки классификации сроков годности
type ExpiryConfig struct {
	NearExpiryDays int
}

// ClientConfig содержит настройки клиента API
type ClientConfig struct {
	BaseURL string
	Locale  string
	Timeout time.Duration
}

// Load загружает конфигурацию.
// Приоритет: переменные окружения с префиксом VALIDITY_, затем config.toml, затем значения по умолчанию.
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

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("VALIDITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("database.host"),
			Port:           v.GetString("database.port"),
			User:           v.GetString("database.user"),
			Password:       v.GetString("database.password"),
			DBName:         v.GetString("database.dbname"),
			SSLMode:        v.GetString("database.sslmode"),
			MigrationsPath: v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			ExpireTime: v.GetDuration("jwt.expire_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Expiry: ExpiryConfig{
			NearExpiryDays: v.GetInt("expiry.near_expiry_days"),
		},
		Client: ClientConfig{
			BaseURL: v.GetString("client.base_url"),
			Locale:  v.GetString("client.locale"),
			Timeout: v.GetDuration("client.timeout"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults задает значения по умолчанию; AutomaticEnv учитывает только ключи, известные viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "validity-service")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "validity")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "secret-key")
	v.SetDefault("jwt.expire_time", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("expiry.near_expiry_days", 30)

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.locale", "en")
	v.SetDefault("client.timeout", 10*time.Second)
}

// IsProduction сообщает, запущено ли приложение в боевом окружении
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN формирует строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL формирует адрес базы данных в формате, который ожидает golang-migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Addr возвращает адрес Redis в виде host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) validate() error {
	if c.Expiry.NearExpiryDays < 0 {
		return fmt.Errorf("expiry.near_expiry_days must be non-negative, got %d", c.Expiry.NearExpiryDays)
	}
	if c.JWT.ExpireTime <= 0 {
		return fmt.Errorf("jwt.expire_time must be positive")
	}
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == "secret-key") {
		return fmt.Errorf("jwt.secret must be set in production")
	}
	return nil
}
