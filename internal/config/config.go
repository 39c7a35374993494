package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Dhoini/stripe-charge/internal/stripe"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey ключ Stripe не задан ни в файле, ни в окружении
	ErrMissingAPIKey = errors.New("stripe api key is required")
	// ErrWriteTimeoutTooShort сервер закроет ответ раньше, чем завершится запрос к Stripe
	ErrWriteTimeoutTooShort = errors.New("server write timeout must exceed stripe request timeout")
)

// defaultWriteTimeout оставляет запас на запись ответа после самого долгого запроса к Stripe
const defaultWriteTimeout = stripe.RequestTimeout + 10*time.Second

// Config представляет структуру конфигурации для приложения.
type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server struct {
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	} `mapstructure:"server"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Stripe struct {
		APIKey                string `mapstructure:"apiKey"`
		VerifySSLCertificates bool   `mapstructure:"verifySslCertificates"`
		LogActivity           bool   `mapstructure:"logActivity"`
		BaseURL               string `mapstructure:"baseUrl"`
	} `mapstructure:"stripe"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
	} `mapstructure:"auth"`
}

// envBindings ключ конфигурации -> переменная окружения
var envBindings = map[string]string{
	"app.port":                     "PORT",
	"app.env":                      "APP_ENV",
	"server.readTimeout":           "SERVER_READ_TIMEOUT",
	"server.writeTimeout":          "SERVER_WRITE_TIMEOUT",
	"server.shutdownTimeout":       "SERVER_SHUTDOWN_TIMEOUT",
	"logging.level":                "LOG_LEVEL",
	"kafka.brokers":                "KAFKA_BROKERS",
	"kafka.topic":                  "KAFKA_TOPIC",
	"stripe.apiKey":                "STRIPE_API_KEY",
	"stripe.verifySslCertificates": "STRIPE_VERIFY_SSL_CERTIFICATES",
	"stripe.logActivity":           "STRIPE_LOG_ACTIVITY",
	"stripe.baseUrl":               "STRIPE_BASE_URL",
	"auth.jwtSecret":               "JWT_SECRET",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", defaultWriteTimeout)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "charges")
	v.SetDefault("stripe.verifySslCertificates", true)
	v.SetDefault("stripe.logActivity", false)
	v.SetDefault("stripe.baseUrl", stripe.APIBaseURL)
	v.SetDefault("auth.jwtSecret", "")
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем config.yaml,
// затем переменные окружения (в том числе из .env).
// Пустой configPath означает поиск config.yaml в текущем каталоге; отсутствие файла не ошибка.
func LoadConfig(envPath, configPath string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" && envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Stripe.APIKey) == "" {
		return fmt.Errorf("%w: set stripe.apiKey or STRIPE_API_KEY", ErrMissingAPIKey)
	}
	// 0 отключает таймаут в net/http
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= stripe.RequestTimeout {
		return fmt.Errorf("%w: got %s, need more than %s", ErrWriteTimeoutTooShort, c.Server.WriteTimeout, stripe.RequestTimeout)
	}
	return nil
}

// StripeConfig возвращает настройки клиента Stripe
func (c *Config) StripeConfig() stripe.Config {
	return stripe.Config{
		APIKey:                c.Stripe.APIKey,
		VerifySSLCertificates: c.Stripe.VerifySSLCertificates,
		LogActivity:           c.Stripe.LogActivity,
		BaseURL:               c.Stripe.BaseURL,
	}
}

// KafkaEnabled сообщает, настроены ли брокеры Kafka
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// AuthEnabled сообщает, включена ли JWT-аутентификация
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}
