package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	DBDriver   string
	MySQLHost  string
	MySQLPort  string
	MySQLDB    string
	MySQLUser  string
	MySQLPass  string
	SQLitePath string
	DBLogLevel string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret     string
	JWTExpiryDays int
	CookieSecure  bool
	BcryptCost    int

	CORSOrigins []string

	KafkaBrokers []string
	KafkaTopic   string

	LoginMaxAttempts   int
	LoginWindowSeconds int

	BootstrapAdmin BootstrapAdmin
}

// BootstrapAdmin seeds an admin at startup when Number is set and not yet taken.
type BootstrapAdmin struct {
	Number   string
	Name     string
	Email    string
	Password string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring non-numeric %s=%q", k, v)
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getlist(k, d string) []string {
	var out []string
	for _, s := range strings.Split(getenv(k, d), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() *Config {
	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "mysql")),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "ownbank"),
		MySQLUser:  getenv("MYSQL_USER", "ownbank"),
		MySQLPass:  getenv("MYSQL_PASS", "ownbank"),
		SQLitePath: getenv("SQLITE_PATH", "ownbank.db"),
		DBLogLevel: getenv("DB_LOG_LEVEL", "warn"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:     os.Getenv("JWT_TOKEN_SECRET"),
		JWTExpiryDays: getint("JWT_TOKEN_EXPIRY", 7),
		CookieSecure:  getbool("COOKIE_SECURE", true),
		BcryptCost:    getint("BCRYPT_COST", 12),

		CORSOrigins: getlist("CORS_ORIGINS", "http://localhost:3000"),

		KafkaBrokers: getlist("KAFKA_BROKERS", ""),
		KafkaTopic:   getenv("KAFKA_TOPIC", "account-events"),

		LoginMaxAttempts:   getint("LOGIN_MAX_ATTEMPTS", 10),
		LoginWindowSeconds: getint("LOGIN_WINDOW_SECONDS", 900),

		BootstrapAdmin: BootstrapAdmin{
			Number:   os.Getenv("BOOTSTRAP_ADMIN_NUMBER"),
			Name:     getenv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
			Email:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_TOKEN_SECRET must be at least 32 characters")
	}
	if c.JWTExpiryDays <= 0 {
		return fmt.Errorf("invalid JWT_TOKEN_EXPIRY %d", c.JWTExpiryDays)
	}
	if c.BootstrapAdmin.Number != "" && len(c.BootstrapAdmin.Password) < 8 {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration { return time.Duration(c.JWTExpiryDays) * 24 * time.Hour }

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) LoginWindow() time.Duration { return time.Duration(c.LoginWindowSeconds) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}
