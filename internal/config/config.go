package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `env:"PORT" env-default:"8080"`

	// DATABASE_URL があれば Postgres より優先
	DatabaseURL string `env:"DATABASE_URL"`
	Postgres    Postgres

	JWTSecret      string        `env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"24h"`

	GoEnv    string `env:"GO_ENV" env-default:"dev"` // dev/prod
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// 空なら AutoMigrate
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	Storage Storage
	MinIO   MinIO
}

type Postgres struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     int    `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DB       string `env:"POSTGRES_DB" env-default:"bookmarket"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-default:"disable"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

// 振込明細画像の保存先
type Storage struct {
	Driver        string `env:"STORAGE_DRIVER" env-default:"file"` // file/minio
	UploadDir     string `env:"UPLOAD_DIR" env-default:"./storage"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:"/storage"`
}

type MinIO struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"payment-proofs"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

// DSN は gorm / golang-migrate 共通の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	p := c.Postgres
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode,
	)
}

// Loadは .env（あれば）と環境変数から読む
func Load() (Config, error) {
	//.envが無いのは許容
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	//空文字で渡された場合もはじく
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.Storage.Driver {
	case "file":
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return Config{}, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_DRIVER=minio")
		}
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER must be file or minio: %q", cfg.Storage.Driver)
	}

	return cfg, nil
}
