package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antigravity/mtr-router/internal/cache"
	"github.com/antigravity/mtr-router/internal/config"
	"github.com/antigravity/mtr-router/internal/freqstore"
	"github.com/antigravity/mtr-router/internal/httpapi"
	"github.com/antigravity/mtr-router/internal/mapstore"
	"github.com/antigravity/mtr-router/internal/nameresolver"
	"github.com/antigravity/mtr-router/internal/routing"
)

func main() {
	cfg := config.New()

	store, err := mapstore.Load(cfg.MapSnapshotPath)
	if err != nil {
		log.Fatalf("load map snapshot: %v", err)
	}

	freq, err := freqstore.Load(cfg.FreqSnapshotPath, func(routeID string) (string, bool) {
		r, ok := store.RouteByID(routeID)
		if !ok {
			return "", false
		}
		return r.NameVariants()[0], true
	})
	if err != nil {
		log.Printf("load frequency snapshot: %v, falling back to mode defaults", err)
		freq = freqstore.Empty()
	}

	graphCache := newGraphCache(cfg)

	builder := routing.NewBuilder(store, freq)
	resolver := nameresolver.New(store, nameresolver.NewTableConverter())
	svc := httpapi.NewService(store, freq, resolver, builder, graphCache)

	handler := httpapi.NewRouter(svc, time.Duration(cfg.RequestTimeoutSeconds)*time.Second, cfg.CORSAllowedOrigins)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("mtr-router listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// newGraphCache connects to Postgres when a DSN is configured,
// degrading to the in-process LRU only when it is not or when the
// connection cannot be established (§7: cache failures never abort
// startup).
func newGraphCache(cfg *config.Config) *cache.GraphCache {
	if cfg.GraphCacheDSN == "" {
		log.Printf("graph cache: no DSN configured, using in-process LRU only")
		return cache.New(nil, cfg.GraphCacheMemItems)
	}

	pool, err := pgxpool.New(context.Background(), cfg.GraphCacheDSN)
	if err != nil {
		log.Printf("graph cache: failed to connect, using in-process LRU only: %v", err)
		return cache.New(nil, cfg.GraphCacheMemItems)
	}
	if err := pool.Ping(context.Background()); err != nil {
		log.Printf("graph cache: ping failed, using in-process LRU only: %v", err)
		return cache.New(nil, cfg.GraphCacheMemItems)
	}

	gc := cache.New(pool, cfg.GraphCacheMemItems)
	if err := gc.EnsureSchema(context.Background()); err != nil {
		log.Printf("graph cache: failed to ensure schema: %v", err)
	}
	return gc
}
