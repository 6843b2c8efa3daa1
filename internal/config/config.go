package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/invwatch/internal/domain"
)

type Config struct {
	Server ServerConfig
	Data   DataConfig
	Cache  CacheConfig
	Export ExportConfig
	Policy domain.Policy
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// DataConfig points at the flat input files. TxnPath may be absent on
// disk; the loader treats that as an empty transaction table.
type DataConfig struct {
	SKUMasterPath string
	DemandPath    string
	InventoryPath string
	TxnPath       string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// ExportConfig covers the XLSX report writer and its optional upload
// target (any S3-compatible endpoint).
type ExportConfig struct {
	OutputDir string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("DATA_SKU_MASTER", "./data/sku_master.csv")
		viper.SetDefault("DATA_DEMAND_DAILY", "./data/demand_daily.csv")
		viper.SetDefault("DATA_INVENTORY_DAILY", "./data/inventory_daily.csv")
		viper.SetDefault("DATA_INVENTORY_TXN", "./data/inventory_txn.csv")

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TTL_SECONDS", 60)

		viper.SetDefault("EXPORT_OUTPUT_DIR", "./data/reports")
		viper.SetDefault("EXPORT_ENDPOINT", "")
		viper.SetDefault("EXPORT_ACCESS_KEY", "")
		viper.SetDefault("EXPORT_SECRET_KEY", "")
		viper.SetDefault("EXPORT_BUCKET", "")
		viper.SetDefault("EXPORT_REGION", "us-east-1")
		viper.SetDefault("EXPORT_USE_SSL", true)

		viper.SetDefault("POLICY_DOS_BASIS_DAYS", 14)
		viper.SetDefault("POLICY_SHORTAGE_DAYS", 14.0)
		viper.SetDefault("POLICY_OVERSTOCK_DAYS", 60.0)
		viper.SetDefault("POLICY_LEAD_TIME_DAYS", 7)
		viper.SetDefault("POLICY_TARGET_COVER_DAYS", 14)
		viper.SetDefault("POLICY_SAFETY_STOCK_DAYS", 3)
		viper.SetDefault("POLICY_MOQ", 0)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Data: DataConfig{
				SKUMasterPath: viper.GetString("DATA_SKU_MASTER"),
				DemandPath:    viper.GetString("DATA_DEMAND_DAILY"),
				InventoryPath: viper.GetString("DATA_INVENTORY_DAILY"),
				TxnPath:       viper.GetString("DATA_INVENTORY_TXN"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
			},
			Export: ExportConfig{
				OutputDir: viper.GetString("EXPORT_OUTPUT_DIR"),
				Endpoint:  viper.GetString("EXPORT_ENDPOINT"),
				AccessKey: viper.GetString("EXPORT_ACCESS_KEY"),
				SecretKey: viper.GetString("EXPORT_SECRET_KEY"),
				Bucket:    viper.GetString("EXPORT_BUCKET"),
				Region:    viper.GetString("EXPORT_REGION"),
				UseSSL:    viper.GetBool("EXPORT_USE_SSL"),
			},
			Policy: domain.Policy{
				DOSBasisDays:    viper.GetInt("POLICY_DOS_BASIS_DAYS"),
				ShortageDays:    viper.GetFloat64("POLICY_SHORTAGE_DAYS"),
				OverstockDays:   viper.GetFloat64("POLICY_OVERSTOCK_DAYS"),
				LeadTimeDays:    viper.GetInt("POLICY_LEAD_TIME_DAYS"),
				TargetCoverDays: viper.GetInt("POLICY_TARGET_COVER_DAYS"),
				SafetyStockDays: viper.GetInt("POLICY_SAFETY_STOCK_DAYS"),
				MOQ:             viper.GetInt("POLICY_MOQ"),
			}.Normalize(),
		}
	})

	return instance
}
