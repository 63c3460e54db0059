package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	MySQLDSN  string `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/storefront?parseTime=true&multiStatements=true"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	PageSize   int           `envconfig:"PAGE_SIZE" default:"12"`

	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@shop.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	SeedCatalog bool `envconfig:"SEED_CATALOG" default:"false"`
}

func Parse() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
