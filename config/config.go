package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	TokenTTLHours     int    `mapstructure:"TOKEN_TTL_HOURS"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling.
	SlotCacheTTLSeconds   int    `mapstructure:"SLOT_CACHE_TTL_SECONDS"`
	BookingLockTTLSeconds int    `mapstructure:"BOOKING_LOCK_TTL_SECONDS"`
	ReminderLeadHours     int    `mapstructure:"REMINDER_LEAD_HOURS"`
	ClinicTimezone        string `mapstructure:"CLINIC_TIMEZONE"` // IANA name; empty means server local
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "clinicops")
	viper.SetDefault("SLOT_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("BOOKING_LOCK_TTL_SECONDS", 10)
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)
	viper.SetDefault("CLINIC_TIMEZONE", "")
}

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ClinicLocation resolves CLINIC_TIMEZONE, falling back to the server's zone.
func ClinicLocation() *time.Location {
	if AppConfig.ClinicTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(AppConfig.ClinicTimezone)
	if err != nil {
		log.Printf("Unknown CLINIC_TIMEZONE %q, using server local time", AppConfig.ClinicTimezone)
		return time.Local
	}
	return loc
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(AppConfig.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
