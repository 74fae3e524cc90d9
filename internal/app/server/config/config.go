package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	TokenStorePostgres = "postgres"
	TokenStoreDynamo   = "dynamodb"
	TokenStoreMemory   = "memory"
)

type Config struct {
	Env    string
	DB     db
	Server server
	Logger logger
	Auth   auth
	Blob   blob
	Legacy legacy
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type auth struct {
	// Password пароль входа устройств в открытом виде, хешируется при старте
	Password     string        `env:"AUTH_PASSWORD"`
	PasswordHash string        `env:"AUTH_PASSWORD_HASH"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"`
	// PublicReadToken статический токен для /api/entries/public, пустой отключает доступ
	PublicReadToken string `env:"PUBLIC_READ_TOKEN"`
	TokenStore      string `env:"TOKEN_STORE"`
	DynamoTable     string `env:"DYNAMO_TABLE"`
}

type blob struct {
	Dir string `env:"BLOB_DIR"`
}

type legacy struct {
	DataKey string `env:"LEGACY_DATA_KEY"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("app_env", EnvLocal)
	viper.SetDefault("run_address", ":8080")
	viper.SetDefault("shutdown_timeout", "10s")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("migrations_path", "migrations")
	viper.SetDefault("token_store", TokenStorePostgres)
	viper.SetDefault("dynamo_table", "timeline-tokens")
	viper.SetDefault("token_ttl", "0s")
	viper.SetDefault("blob_dir", "data/blobs")
	viper.SetDefault("legacy_data_key", "timeline_data")

	config := Config{
		Env: viper.GetString("app_env"),
		DB: db{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: server{
			RunAddress:      viper.GetString("run_address"),
			ShutdownTimeout: viper.GetDuration("shutdown_timeout"),
		},
		Logger: logger{LogLevel: viper.GetString("log_level")},
		Auth: auth{
			Password:        viper.GetString("auth_password"),
			PasswordHash:    viper.GetString("auth_password_hash"),
			TokenTTL:        viper.GetDuration("token_ttl"),
			PublicReadToken: viper.GetString("public_read_token"),
			TokenStore:      viper.GetString("token_store"),
			DynamoTable:     viper.GetString("dynamo_table"),
		},
		Blob:   blob{Dir: viper.GetString("blob_dir")},
		Legacy: legacy{DataKey: viper.GetString("legacy_data_key")},
	}

	if config.Auth.Password == "" && config.Auth.PasswordHash == "" {
		log.Fatalln("AUTH_PASSWORD or AUTH_PASSWORD_HASH must be set")
	}

	return &config
}
