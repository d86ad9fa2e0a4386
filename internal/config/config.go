package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Storage StorageConfig `mapstructure:"storage"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`
	CORS    CORSConfig    `mapstructure:"cors"`
	AppHost string        `mapstructure:"host"`
}

type DBConfig struct {
	Source string `mapstructure:"source"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type StorageConfig struct {
	Path         string        `mapstructure:"path"`
	PublicURL    string        `mapstructure:"public_url"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"`
}

type ExportConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	DefaultName string `mapstructure:"default_name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var ErrMissingSecret = errors.New("jwt.secret must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", ":8080")
	v.SetDefault("db.source", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("storage.path", "./data/blobs")
	v.SetDefault("storage.public_url", "http://localhost:8080")
	v.SetDefault("storage.signed_url_ttl", time.Hour)
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.default_name", "TheCloud_Backup")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

// Load reads configs/settings.yml, then lets environment variables override
// any key (db.source becomes DB_SOURCE). A .env file in the working
// directory is loaded into the environment first when present.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"./configs", "/configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("settings")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		return nil, ErrMissingSecret
	}

	return &cfg, nil
}
