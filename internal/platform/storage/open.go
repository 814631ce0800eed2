package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/config"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
)

// Backend is an opened Storage plus whatever connection sits behind it.
// DB is non-nil only for the postgres driver.
type Backend struct {
	Storage Storage
	DB      *sql.DB
	closers []func() error
}

// Close releases the underlying connections.
func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the Storage selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StorageDriver {
	case "memory":
		return &Backend{Storage: NewMemory()}, nil

	case "file":
		f, err := NewFile(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return &Backend{Storage: f}, nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create local_storage table: %w", err)
		}
		log.Println("storage: connected to postgres")
		return &Backend{Storage: NewPostgres(db), DB: db, closers: []func() error{db.Close}}, nil

	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Println("storage: connected to redis")
		return &Backend{Storage: NewRedis(client, cfg.RedisPrefix), closers: []func() error{client.Close}}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
