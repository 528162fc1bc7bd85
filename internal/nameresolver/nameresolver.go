// Package nameresolver performs fuzzy resolution of free-text station
// and line names, with multi-script fallback (§4.4).
package nameresolver

import (
	"strings"
	"sync"

	"github.com/bluele/gcache"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/antigravity/mtr-router/internal/mapstore"
	"github.com/antigravity/mtr-router/internal/models"
)

const (
	fuzzyMinRatio = 0.2
	memoCapacity  = 4096
)

var folder = cases.Fold()

// foldText applies Unicode width folding (fullwidth/halfwidth, relevant
// to Japanese kana variants) followed by Unicode case folding.
func foldText(s string) string {
	return folder.String(width.Fold.String(s))
}

// NameResolver resolves free text against a loaded snapshot's stations
// and lines. The zero value is not usable; construct with New.
type NameResolver struct {
	store     *mapstore.MapStore
	converter ScriptConverter

	mu   sync.Mutex
	memo gcache.Cache // folded text -> resolved station id (or "" for a confirmed miss)
}

// New builds a resolver over store using converter for script fallback.
// Pass NewTableConverter() for the built-in simplified/traditional
// table, or nil to disable script fallback entirely.
func New(store *mapstore.MapStore, converter ScriptConverter) *NameResolver {
	return &NameResolver{
		store:     store,
		converter: converter,
		memo:      gcache.New(memoCapacity).LRU().Build(),
	}
}

// Clear empties the process-wide memo. Callers must invoke this after
// reloading the underlying MapStore (§4.4 Caching / §5 Shared resources).
func (r *NameResolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo.Purge()
}

// ResolveStation resolves free text to a routable station id. When
// fuzzy is false, only exact (post-fold, post-script-conversion)
// matches are attempted.
func (r *NameResolver) ResolveStation(text string, fuzzy bool) (string, bool) {
	folded := foldText(text)
	memoKey := "station:" + folded
	if fuzzy {
		// Only the fuzzy path's result is memoized: a non-fuzzy caller
		// asking the same text later must not short-circuit into a
		// fuzzy-derived answer it didn't ask for.
		r.mu.Lock()
		if v, err := r.memo.Get(memoKey); err == nil {
			r.mu.Unlock()
			id, _ := v.(string)
			return id, id != ""
		}
		r.mu.Unlock()
	}

	if id, ok := r.exactStationMatch(text); ok {
		if fuzzy {
			r.rememberStation(memoKey, id)
		}
		return id, true
	}

	if !fuzzy {
		return "", false
	}

	id, ok := r.fuzzyStationMatch(text)
	r.rememberStation(memoKey, id)
	return id, ok
}

func (r *NameResolver) rememberStation(memoKey, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.memo.Set(memoKey, id)
}

// candidateTexts expands text into its script variants (§4.4 step 2):
// the literal text plus whatever the converter can produce.
func (r *NameResolver) candidateTexts(text string) []string {
	out := []string{text}
	if r.converter == nil {
		return out
	}
	if s, ok := r.converter.ToSimplified(text); ok && s != text {
		out = append(out, s)
	}
	if t, ok := r.converter.ToTraditional(text); ok && t != text {
		out = append(out, t)
	}
	if k, ok := r.converter.ToKanji(text); ok && k != text {
		out = append(out, k)
	}
	return out
}

// exactStationMatch implements §4.4 step 3: exact match against the
// full name, each pipe-separated variant, the text before the first
// slash of the last variant, and the first variant.
func (r *NameResolver) exactStationMatch(text string) (string, bool) {
	for _, candidate := range r.candidateTexts(text) {
		folded := foldText(candidate)
		for _, s := range r.store.Stations() {
			if !s.Routable {
				continue
			}
			if stationNameMatches(s, folded) {
				return s.ID, true
			}
		}
	}
	return "", false
}

func stationNameMatches(s *models.Station, foldedCandidate string) bool {
	if foldText(s.Name) == foldedCandidate {
		return true
	}
	variants := s.NameVariants()
	for _, v := range variants {
		if foldText(v) == foldedCandidate {
			return true
		}
	}
	last := variants[len(variants)-1]
	if idx := strings.Index(last, "/"); idx >= 0 {
		if foldText(last[:idx]) == foldedCandidate {
			return true
		}
	}
	if foldText(variants[0]) == foldedCandidate {
		return true
	}
	return false
}

// fuzzyStationMatch implements §4.4 step 4: the highest-scoring
// routable station name wins, ties broken by the station encountered
// first in enumeration order.
func (r *NameResolver) fuzzyStationMatch(text string) (string, bool) {
	folded := foldText(text)
	best := ""
	bestScore := -1.0
	for _, s := range r.store.Stations() {
		if !s.Routable {
			continue
		}
		for _, v := range s.NameVariants() {
			score := similarityRatio(folded, foldText(v))
			if score > bestScore {
				bestScore = score
				best = s.ID
			}
		}
	}
	if bestScore >= fuzzyMinRatio {
		return best, true
	}
	return "", false
}

// ResolveRoutes resolves free text to every route id sharing that
// display name (§4.4: "may be several; same display name, different
// directions"), additionally trying "{base} {number}" combinations and
// each script variant (§4.4 step 5).
func (r *NameResolver) ResolveRoutes(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, candidate := range r.candidateTexts(text) {
		folded := foldText(candidate)
		for _, route := range r.store.Routes() {
			if seen[route.ID] {
				continue
			}
			if routeNameMatches(route, folded) {
				out = append(out, route.ID)
				seen[route.ID] = true
			}
		}
	}
	return out
}

func routeNameMatches(route *models.Route, foldedCandidate string) bool {
	if foldText(route.Name) == foldedCandidate {
		return true
	}
	for _, v := range route.NameVariants() {
		if foldText(v) == foldedCandidate {
			return true
		}
		if route.Number != "" && foldText(v+" "+route.Number) == foldedCandidate {
			return true
		}
	}
	if route.Number != "" && foldText(route.Number) == foldedCandidate {
		return true
	}
	return false
}
