package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port       string
	Env        string
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	LogLevel   string
	Secret     []byte
	TokenTTL   time.Duration
	CORSOrigin []string

	// Identity provider credentials for exchanging ID tokens at POST /jwt.
	IdentitySecret   []byte
	IdentityIssuer   string
	IdentityAudience string
	DevLogin         bool

	StripeKey string
	Currency  string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	EventBroker  string
	KafkaBrokers []string
	KafkaTopic   string

	RateLimitRPS float64
}

// Production reports whether cookies must be issued Secure with SameSite=None.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found; using system environment")
	}

	port := getenv("PORT", "9000")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	cfg := Config{
		Port:             port,
		Env:              getenv("APP_ENV", "development"),
		MongoURI:         getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getenv("MONGO_DB", "plantNet-session"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		Secret:           []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		TokenTTL:         getDuration("TOKEN_TTL", 365*24*time.Hour),
		CORSOrigin:       splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		IdentitySecret:   []byte(os.Getenv("IDENTITY_TOKEN_SECRET")),
		IdentityIssuer:   os.Getenv("IDENTITY_ISSUER"),
		IdentityAudience: os.Getenv("IDENTITY_AUDIENCE"),
		DevLogin:         getBool("DEV_LOGIN"),
		StripeKey:        os.Getenv("STRIPE_SECRET_KEY"),
		Currency:         getenv("PAYMENT_CURRENCY", "usd"),
		SMTPHost:         getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getenv("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		EventBroker:      getenv("EVENT_BROKER", "redis"),
		KafkaBrokers:     splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:       getenv("KAFKA_TOPIC", "order-notifications"),
		RateLimitRPS:     getFloat("RATE_LIMIT_RPS", 5),
	}

	if len(cfg.Secret) == 0 {
		return cfg, errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if cfg.DevLogin && cfg.Production() {
		return cfg, errors.New("DEV_LOGIN cannot be enabled in production")
	}
	switch cfg.EventBroker {
	case "redis", "kafka":
	default:
		return cfg, errors.New("EVENT_BROKER must be redis or kafka")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getBool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && b
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
