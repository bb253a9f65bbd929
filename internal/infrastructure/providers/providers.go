package providers

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/folio-sh/folio/client"
	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/infrastructure/database"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis creates the redis client used for counters and pub/sub.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewMemcache creates a memcache client, or nil when unconfigured.
func NewMemcache(addr string) *memcache.Client {
	if addr == "" {
		return nil
	}
	return database.NewMemcached(addr)
}

// NewRevalidateClient constructs the front-end revalidation webhook client.
func NewRevalidateClient(conf config.Site) *client.Client {
	return client.New(conf.RevalidateURL, conf.RevalidateSecret)
}
