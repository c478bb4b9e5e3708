package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the sync job reads from the environment.
// Credentials stay env-only; tunables may be overridden by the yaml file.
type Config struct {
	InputBucket   string
	InputKey      string
	InputEncoding string
	OutputBucket  string
	OutputPrefix  string

	SupplierAuthURL     string
	SupplierProductsURL string
	SupplierEmail       string
	SupplierPassword    string

	NetoURL         string
	NetoUsername    string
	NetoKey         string
	NetoWarehouseID string

	RedisAddr  string
	ConfigPath string

	Postgres PostgresConfig
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load() // load .env if it exists

	cfg := &Config{
		InputBucket:   getEnv("INPUT_BUCKET", ""),
		InputKey:      getEnv("INPUT_KEY", ""),
		InputEncoding: getEnv("INPUT_ENCODING", ""),
		OutputBucket:  getEnv("OUTPUT_BUCKET", ""),
		OutputPrefix:  getEnv("OUTPUT_PREFIX", "stock_snapshot"),

		SupplierAuthURL:     getEnv("SUPPLIER_AUTH_URL", "https://api.dropshipzone.com.au/auth"),
		SupplierProductsURL: getEnv("SUPPLIER_PRODUCTS_URL", "https://api.dropshipzone.com.au/v2/products"),
		SupplierEmail:       getEnv("SUPPLIER_EMAIL", ""),
		SupplierPassword:    getEnv("SUPPLIER_PASSWORD", ""),

		NetoURL:         getEnv("NETOAPI_URL", "https://www.shoppingsmart.com.au/do/WS/NetoAPI"),
		NetoUsername:    getEnv("NETOAPI_USERNAME", ""),
		NetoKey:         getEnv("NETOAPI_KEY", ""),
		NetoWarehouseID: getEnv("NETOAPI_WAREHOUSE_ID", "2"),

		RedisAddr:  getEnv("REDIS_ADDR", ""),
		ConfigPath: getEnv("CONFIG_PATH", ""),

		Postgres: *GetPostgresConfig(),
	}

	if cfg.InputBucket == "" || cfg.InputKey == "" {
		return nil, fmt.Errorf("INPUT_BUCKET and INPUT_KEY must be set")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
