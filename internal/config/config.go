package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverMongo    = "mongodb"
)

type Config struct {
	Port          string
	DBDriver      string
	DatabaseURL   string
	MongoDatabase string
	JWTSecret     string
	CORSOrigins   []string
}

// Load reads configuration from the environment after applying envFile, if it exists.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "loading %s failed", envFile)
		}
	}

	cfg := &Config{
		Port:          getenv("PORT", "5000"),
		DBDriver:      getenv("DB_DRIVER", DriverSQLite),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoDatabase: getenv("MONGO_DATABASE", "socialboard"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverPgx, DriverMongo:
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// AllowsOrigin reports whether a browser origin may open a websocket.
func (c *Config) AllowsOrigin(origin string) bool {
	for _, o := range c.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
