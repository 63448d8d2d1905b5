package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "MONGO_DATABASE", "JWT_SECRET", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "file:test.db")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "5000", cfg.Port)
	require.Equal(t, ":5000", cfg.Addr())
	require.Equal(t, DriverSQLite, cfg.DBDriver)
	require.Equal(t, "socialboard", cfg.MongoDatabase)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.True(t, cfg.AllowsOrigin("http://anything"))
}

func TestLoadRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "file:test.db")

	_, err := Load("")
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	_, err = Load("")
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "x")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load("")
	require.ErrorContains(t, err, "oracle")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even to "".
	for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "CORS_ORIGINS"} {
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=8081\nDB_DRIVER=mongodb\nDATABASE_URL=mongodb://localhost:27017\nJWT_SECRET=from-file\nCORS_ORIGINS=http://localhost:3000, https://example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "8081", cfg.Port)
	require.Equal(t, DriverMongo, cfg.DBDriver)
	require.Equal(t, "from-file", cfg.JWTSecret)
	require.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.CORSOrigins)
	require.True(t, cfg.AllowsOrigin("https://example.com"))
	require.False(t, cfg.AllowsOrigin("https://evil.example"))
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "x")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
