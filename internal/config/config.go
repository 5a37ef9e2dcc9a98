package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Mail      MailConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Backend   string
	LocalPath string
	S3Bucket  string
	S3Region  string
}

type MailConfig struct {
	FromAddress string
	PortalURL   string
	// Per-channel budget for a single outbound call during fan-out.
	SendTimeout time.Duration
}

type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	ExporterURL    string
	APIToken       string
	SamplingRatio  float64
}

func NewConfig() *Config {
	environment := getEnv("SERVER_ENVIRONMENT", "development")
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnv("SERVER_PORT", "3000"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			Environment:  environment,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "unihub"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			S3Bucket:  getEnv("STORAGE_S3_BUCKET", ""),
			S3Region:  getEnv("STORAGE_S3_REGION", "eu-west-1"),
		},
		Mail: MailConfig{
			FromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@unihub.example"),
			PortalURL:   getEnv("MAIL_PORTAL_URL", "http://localhost:3000"),
			SendTimeout: getEnvDuration("MAIL_SEND_TIMEOUT", 5*time.Second),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnvBool("TELEMETRY_ENABLED", false),
			ServiceName:    getEnv("TELEMETRY_SERVICE_NAME", "unihub"),
			ServiceVersion: getEnv("TELEMETRY_SERVICE_VERSION", "dev"),
			Environment:    environment,
			ExporterURL:    getEnv("TELEMETRY_EXPORTER_URL", ""),
			APIToken:       getEnv("TELEMETRY_API_TOKEN", ""),
			SamplingRatio:  getEnvFloat("TELEMETRY_SAMPLING_RATIO", 1.0),
		},
	}
}

func (c *Config) DatabaseDSN() string {
	return "host=" + c.Database.Host +
		" port=" + strconv.Itoa(c.Database.Port) +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// MigrateURL is the connection string in the URL form golang-migrate's pgx
// driver expects.
func (c *Config) MigrateURL() string {
	return "pgx5://" + c.Database.User + ":" + c.Database.Password +
		"@" + c.Database.Host + ":" + strconv.Itoa(c.Database.Port) +
		"/" + c.Database.Name + "?sslmode=" + c.Database.SSLMode
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
