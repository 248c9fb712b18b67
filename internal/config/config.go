package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type AuthConfig struct {
	// PassphraseHash is the bcrypt hash of the shared access passphrase.
	// Passphrase (plain) is accepted as a development fallback.
	PassphraseHash string
	Passphrase     string
	JWTSecret      string
	Expiration     time.Duration
}

type StorageConfig struct {
	// Backend selects the primary snapshot store: local, static or document.
	Backend  string
	Local    LocalConfig
	Static   StaticConfig
	Document DocumentConfig
}

type LocalConfig struct {
	Path string
}

type StaticConfig struct {
	// SnapshotURL is the raw file URL the snapshot is fetched from
	// (a GitHub raw link in the typical deployment).
	SnapshotURL string
	Timeout     time.Duration
}

type DocumentConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	InstallID    string
	PollInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Auth: AuthConfig{
			PassphraseHash: getEnv("PASSPHRASE_HASH", ""),
			Passphrase:     getEnv("PASSPHRASE", ""),
			JWTSecret:      getEnv("JWT_SECRET", "your-secret-key"),
			Expiration:     getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "local"),
			Local: LocalConfig{
				Path: getEnv("LOCAL_DB_PATH", "./data/library.db"),
			},
			Static: StaticConfig{
				SnapshotURL: getEnv("STATIC_SNAPSHOT_URL", ""),
				Timeout:     getEnvAsDuration("STATIC_TIMEOUT", 15*time.Second),
			},
			Document: DocumentConfig{
				Host:         getEnv("DB_HOST", "localhost"),
				Port:         getEnv("DB_PORT", "5432"),
				User:         getEnv("DB_USER", "postgres"),
				Password:     getEnv("DB_PASSWORD", "postgres"),
				DBName:       getEnv("DB_NAME", "media_library"),
				SSLMode:      getEnv("DB_SSLMODE", "disable"),
				InstallID:    getEnv("INSTALL_ID", "default"),
				PollInterval: getEnvAsDuration("SYNC_POLL_INTERVAL", 10*time.Second),
			},
		},
	}

	if config.Auth.PassphraseHash == "" && config.Auth.Passphrase == "" {
		return nil, fmt.Errorf("PASSPHRASE_HASH or PASSPHRASE must be set")
	}
	if config.Storage.Backend == "static" && config.Storage.Static.SnapshotURL == "" {
		return nil, fmt.Errorf("STATIC_SNAPSHOT_URL must be set for the static backend")
	}

	return config, nil
}

func (d *DocumentConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
