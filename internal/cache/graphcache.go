// Package cache implements GraphCache (§4.8): a content-addressed cache
// of built graphs, fronted by an in-process LRU and backed by Postgres,
// adapted from the same pgx query/scan idiom the rest of the stack uses
// for persistence.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bluele/gcache"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antigravity/mtr-router/internal/models"
	"github.com/antigravity/mtr-router/internal/routing"
)

// GraphCache fronts a Postgres-backed blob store with an in-process LRU
// (§5: "GraphCache: write-once per key; concurrent writers to the same
// key must serialise so only one persists").
type GraphCache struct {
	mem gcache.Cache
	db  *pgxpool.Pool
}

// New builds a GraphCache. db may be nil, in which case the cache
// degrades to the in-process LRU only (useful for tests and for
// deployments without a configured Postgres DSN).
func New(db *pgxpool.Pool, memItems int) *GraphCache {
	if memItems <= 0 {
		memItems = 64
	}
	return &GraphCache{mem: gcache.New(memItems).LRU().Build(), db: db}
}

// Ping reports whether the backing Postgres store (if configured) is
// reachable. A nil db (in-process-LRU-only mode) always reports healthy.
func (c *GraphCache) Ping(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Ping(ctx)
}

// EnsureSchema creates the backing table if it does not already exist.
func (c *GraphCache) EnsureSchema(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	_, err := c.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS graph_cache (
			fingerprint TEXT PRIMARY KEY,
			payload     BYTEA NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// Fingerprint computes the content-addressed key of §4.8: a hash of the
// map-snapshot version, the frequency-snapshot version, and a canonical
// encoding of the filter set (sorted ignored-line list, mode toggles,
// route type, max-wild-blocks).
func Fingerprint(mapVersion, freqVersion string, filter models.FilterSet) string {
	ignored := make([]string, 0, len(filter.IgnoredLines))
	for l := range filter.IgnoredLines {
		ignored = append(ignored, l)
	}
	sort.Strings(ignored)

	h := sha256.New()
	fmt.Fprintf(h, "map=%s\nfreq=%s\nignored=%s\n", mapVersion, freqVersion, strings.Join(ignored, ","))
	fmt.Fprintf(h, "allow_high_speed=%v\nallow_boat=%v\nlrt_only=%v\nallow_wild_walking=%v\n",
		filter.AllowHighSpeed, filter.AllowBoat, filter.LRTOnly, filter.AllowWildWalking)
	fmt.Fprintf(h, "route_type=%s\nmax_wild_blocks=%v\n", filter.RouteType, filter.MaxWildBlocks)
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up key, trying the in-process LRU before Postgres. A
// corrupted payload is treated as a miss, never as an error (§6.3).
func (c *GraphCache) Get(ctx context.Context, key string) (*routing.Graph, bool) {
	if v, err := c.mem.Get(key); err == nil {
		if g, ok := v.(*routing.Graph); ok {
			return g, true
		}
	}
	if c.db == nil {
		return nil, false
	}

	var payload []byte
	err := c.db.QueryRow(ctx, `SELECT payload FROM graph_cache WHERE fingerprint = $1`, key).Scan(&payload)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("cache: postgres lookup failed for %s, treating as miss: %v", key, err)
		}
		return nil, false
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		log.Printf("cache: corrupted payload for %s, treating as miss: %v", key, err)
		return nil, false
	}

	g := routing.FromSnapshot(snap)
	_ = c.mem.Set(key, g)
	return g, true
}

// Put persists g under key. Only call this for filter sets that pass
// models.FilterSet.IsStandard (§4.8's cache-cardinality bound); callers
// that bypass the cache never call Put.
func (c *GraphCache) Put(ctx context.Context, key string, g *routing.Graph) error {
	_ = c.mem.Set(key, g)
	if c.db == nil {
		return nil
	}
	payload, err := encodeSnapshot(g.ToSnapshot())
	if err != nil {
		return fmt.Errorf("encode graph snapshot: %w", err)
	}
	_, err = c.db.Exec(ctx, `
		INSERT INTO graph_cache (fingerprint, payload)
		VALUES ($1, $2)
		ON CONFLICT (fingerprint) DO NOTHING
	`, key, payload)
	return err
}

func encodeSnapshot(s routing.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	// gob is used rather than a general serialization library because
	// none of the retrieved examples import one; gob round-trips Go
	// struct literals (including the nested Edge slices here) without a
	// schema, which plain encoding/json would also do but less compactly
	// for this case's map[string][]Edge shape.
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (routing.Snapshot, error) {
	var s routing.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return routing.Snapshot{}, err
	}
	return s, nil
}
