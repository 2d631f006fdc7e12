package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	Redis    *Redisconfig
	Srv      *Serviceconfig
	Auth     *Authconfig
	Notify   *Notifyconfig
	Log      *Loggerconfig
}

type DBconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RabbitMqconfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Redisconfig struct {
	Addr     string
	Password string
}

type Serviceconfig struct {
	Port            string
	ShutdownTimeout time.Duration
	RunMigrations   bool
}

type Authconfig struct {
	AccessSecret string
}

type Notifyconfig struct {
	// Retention is how long a notification stays readable before the
	// sweeper removes it.
	Retention     time.Duration
	SweepInterval time.Duration
	// DispatchTimeout bounds the best-effort delivery of one event.
	DispatchTimeout time.Duration
}

type Loggerconfig struct {
	Level string
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			return def
		}
		return val
	}

	getEnvDuration := func(key string, def time.Duration) time.Duration {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := time.ParseDuration(valStr)
		if err != nil {
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "carpool_user"),
			Password: getEnv("DB_PASSWORD", "carpool_pass"),
			Database: getEnv("DB_NAME", "carpool_db"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		Redis: &Redisconfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Srv: &Serviceconfig{
			Port:            getEnv("CARPOOL_SERVICE_PORT", "3000"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			RunMigrations:   getEnv("MIGRATE", "") == "true",
		},
		Auth: &Authconfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "dev-secret"),
		},
		Notify: &Notifyconfig{
			Retention:       getEnvDuration("NOTIFY_RETENTION", 30*24*time.Hour),
			SweepInterval:   getEnvDuration("NOTIFY_SWEEP_INTERVAL", time.Hour),
			DispatchTimeout: getEnvDuration("NOTIFY_DISPATCH_TIMEOUT", 3*time.Second),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
