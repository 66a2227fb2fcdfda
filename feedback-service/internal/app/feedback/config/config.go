package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Worker   WorkerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (SERVER_PORT, затем FASTAPIPORT, по умолчанию 8000)
}

type DatabaseConfig struct {
	Host         string // Хост PostgreSQL
	Port         string // Порт PostgreSQL
	User         string // Имя пользователя БД
	Password     string // Пароль БД
	DBName       string // Имя базы данных
	SSLMode      string // Режим SSL (disable/require/verify-full)
	MaxOpenConns int    // Размер пула соединений
}

type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	JobLockTTL time.Duration // Время жизни блокировки выполнения задачи
}

type KafkaConfig struct {
	Brokers     []string // Список брокеров Kafka (формат: host:port)
	EventsTopic string   // Топик для событий FEEDBACK_CREATED, FEEDBACK_UPDATED, FEEDBACK_DELETED
	JobsTopic   string   // Топик задач аналитики JOB_REQUESTED
	GroupID     string   // Consumer group воркера
}

type JWTConfig struct {
	Secret  string // Секретный ключ для проверки JWT токенов
	Enabled bool   // Требовать токен на изменяющих запросах
}

type CORSConfig struct {
	Origins []string
}

type WorkerConfig struct {
	ReaperSchedule string        // Cron расписание проверки зависших задач
	JobTimeout     time.Duration // Сколько задача может находиться в running
	HTTPPort       string        // Порт health и /metrics воркера
}

type LogConfig struct {
	Level        string
	LogstashAddr string // Пусто - только stdout
}

// requiredEnv - без этих переменных сервис не запускается
var requiredEnv = []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	var missing []string
	for _, key := range requiredEnv {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", getEnv("FASTAPIPORT", "8000")),
		},
		Database: DatabaseConfig{
			Host:         os.Getenv("DB_HOST"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			DBName:       os.Getenv("DB_NAME"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		},
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			JobLockTTL: getEnvDuration("JOB_LOCK_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvList("KAFKA_BROKERS", "localhost:9092"),
			EventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "feedback_events"),
			JobsTopic:   getEnv("KAFKA_JOBS_TOPIC", "feedback_jobs"),
			GroupID:     getEnv("KAFKA_GROUP_ID", "feedback-worker"),
		},
		JWT: JWTConfig{
			Secret:  getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			Enabled: getEnvBool("AUTH_ENABLED", false),
		},
		CORS: CORSConfig{
			Origins: getEnvList("CORS_ORIGINS", "http://localhost:3000"),
		},
		Worker: WorkerConfig{
			ReaperSchedule: getEnv("REAPER_SCHEDULE", "*/5 * * * *"),
			JobTimeout:     getEnvDuration("JOB_TIMEOUT", 10*time.Minute),
			HTTPPort:       getEnv("WORKER_HTTP_PORT", "8081"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// URL - строка подключения в формате postgres://, ее понимают и pgx, и golang-migrate
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList разбирает список через запятую, пустые элементы отбрасываются
func getEnvList(key, defaultValue string) []string {
	var list []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
