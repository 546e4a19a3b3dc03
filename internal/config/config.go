package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 価格の扱い
const (
	// クライアントの申告価格は無視してカタログ価格を使う
	PricePolicyCatalog = "catalog"
	// 申告価格がカタログと違えば400
	PricePolicyStrict = "strict"
)

const devJWTSecret = "dev_secret_change_me"

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば POSTGRES_* より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret    string        // JWT署名シークレット
	JWTAccessTTL time.Duration // アクセストークンの有効期限

	PricePolicy    string        // catalog / strict
	RequestTimeout time.Duration // 1リクエストの上限

	KafkaBrokers    []string // 空なら注文イベントは送らない
	KafkaOrderTopic string

	LogLevel string // debug/info/warn/error
	GoEnv    string // dev/prod
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// LoadEnvFile は .env を環境変数に読み込む。ファイルが無いのはエラーにしない。
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	var err error
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "foodplaza"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PricePolicy:     strings.ToLower(getenv("ORDER_PRICE_POLICY", PricePolicyCatalog)),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "foodplaza.orders"),

		LogLevel: strings.ToLower(getenv("LOG_LEVEL", "info")),
		GoEnv:    getenv("GO_ENV", "dev"),
	}

	if cfg.PostgresPort, err = intEnv("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdleConns, err = intEnv("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	if cfg.DBConnMaxLifetime, err = durationEnv("DB_CONN_MAX_LIFETIME", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.JWTAccessTTL, err = durationEnv("JWT_ACCESS_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	switch cfg.PricePolicy {
	case PricePolicyCatalog, PricePolicyStrict:
	default:
		return Config{}, fmt.Errorf("ORDER_PRICE_POLICY must be %q or %q", PricePolicyCatalog, PricePolicyStrict)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL must be one of debug/info/warn/error")
	}
	if cfg.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}

	return cfg, nil
}

// DSN は gorm.io/driver/postgres に渡す接続文字列。
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Addr は echo の Start に渡すアドレス（":8080"）。
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
