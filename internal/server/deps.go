package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/config"
	"github.com/hongminglow/campus-market/internal/session"
	"github.com/hongminglow/campus-market/internal/session/redisstore"
	"github.com/hongminglow/campus-market/internal/storage"
	"github.com/hongminglow/campus-market/internal/storage/postgres"
	"github.com/hongminglow/campus-market/internal/storage/sqlite"
)

// OpenStore connects the configured database and applies its schema.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// SessionBackend is a session store that must be released on shutdown.
type SessionBackend interface {
	session.Store
	Close() error
}

type memoryBackend struct{ *session.MemoryStore }

func (memoryBackend) Close() error { return nil }

// OpenSessionStore returns the configured session store.
func OpenSessionStore(ctx context.Context, cfg config.Config, log *zap.Logger) (SessionBackend, error) {
	switch cfg.SessionStore {
	case "redis":
		store, err := redisstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("sessions stored in redis")
		return store, nil
	case "memory":
		log.Info("sessions stored in memory")
		return memoryBackend{session.NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}
}
