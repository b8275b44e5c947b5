package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bibliointel/bibliointel-server/internal/cache"
	"github.com/bibliointel/bibliointel-server/internal/config"
	"github.com/bibliointel/bibliointel-server/internal/logger"
	"github.com/bibliointel/bibliointel-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the catalog database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "catalog.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the response cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the aggregated-result cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cachePath := filepath.Join(cfg.Data.BasePath, "cache")
	c, err := cache.New(cachePath, cfg.Pipeline.CacheTTL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Cache initialized", "path", cachePath, "ttl", cfg.Pipeline.CacheTTL)

	return &CacheHandle{Cache: c}, nil
}
