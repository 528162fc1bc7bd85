// Package httpapi exposes the routing core over HTTP (§6.4): it owns
// request parsing/validation, the GraphCache lookup-or-build decision,
// and translation of routingerr.Kind into the status codes of §7.
package httpapi

import (
	"context"

	"github.com/antigravity/mtr-router/internal/cache"
	"github.com/antigravity/mtr-router/internal/freqstore"
	"github.com/antigravity/mtr-router/internal/mapstore"
	"github.com/antigravity/mtr-router/internal/models"
	"github.com/antigravity/mtr-router/internal/nameresolver"
	"github.com/antigravity/mtr-router/internal/routing"
	"github.com/antigravity/mtr-router/internal/routingerr"
)

// Service wires NameResolver, Builder, GraphCache, Router and
// ItineraryFormatter into the single request-scoped pipeline §2
// describes: resolve endpoints, build or fetch a graph, search it,
// format the winning path.
type Service struct {
	Store    *mapstore.MapStore
	Freq     *freqstore.FrequencyStore
	Resolver *nameresolver.NameResolver
	Builder  *routing.Builder
	Cache    *cache.GraphCache
	Router   *routing.Router
	Fmt      *routing.ItineraryFormatter
}

// NewService assembles a Service over already-loaded snapshots.
func NewService(store *mapstore.MapStore, freq *freqstore.FrequencyStore, resolver *nameresolver.NameResolver, builder *routing.Builder, graphCache *cache.GraphCache) *Service {
	return &Service{
		Store:    store,
		Freq:     freq,
		Resolver: resolver,
		Builder:  builder,
		Cache:    graphCache,
		Router:   routing.NewRouter(),
		Fmt:      routing.NewItineraryFormatter(store),
	}
}

// Route resolves req's endpoints, obtains a graph for req's filter set
// (from cache when the filters are cacheable, freshly built otherwise),
// runs the search and formats the result.
func (s *Service) Route(ctx context.Context, req RouteRequest) (models.Itinerary, error) {
	filter, err := s.buildFilterSet(req)
	if err != nil {
		return models.Itinerary{}, err
	}

	originID, ok := s.Resolver.ResolveStation(req.Origin, true)
	if !ok {
		return models.Itinerary{}, routingerr.Newf(routingerr.KindUnknownStation, "could not resolve origin %q", req.Origin)
	}
	destID, ok := s.Resolver.ResolveStation(req.Destination, true)
	if !ok {
		return models.Itinerary{}, routingerr.Newf(routingerr.KindUnknownStation, "could not resolve destination %q", req.Destination)
	}

	g, err := s.graphFor(ctx, filter)
	if err != nil {
		return models.Itinerary{}, err
	}

	path, _, err := s.Router.ShortestPath(ctx, g, originID, destID)
	if err != nil {
		return models.Itinerary{}, err
	}

	return s.Fmt.Format(g, path)
}

// graphFor fetches filter's graph from GraphCache when the filter shape
// is cacheable (§4.8), building and populating the cache on a miss.
// Non-cacheable filters always build fresh.
func (s *Service) graphFor(ctx context.Context, filter models.FilterSet) (*routing.Graph, error) {
	if s.Cache == nil || !filter.IsStandard() {
		return s.Builder.Build(ctx, filter)
	}

	key := cache.Fingerprint(s.Store.Version(), s.Freq.Version(), filter)
	if g, ok := s.Cache.Get(ctx, key); ok {
		return g, nil
	}

	g, err := s.Builder.Build(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Put(ctx, key, g); err != nil {
		return nil, routingerr.Wrap(routingerr.KindInternalInvariant, err, "persist graph to cache")
	}
	return g, nil
}

// buildFilterSet translates a RouteRequest into the FilterSet the
// builder operates on, expanding only_lines into its equivalent
// banned-everything-else form (§6.4) since GraphBuilder only knows how
// to ban lines, not whitelist them.
func (s *Service) buildFilterSet(req RouteRequest) (models.FilterSet, error) {
	filter := models.NewFilterSet()

	if req.RouteType == string(models.RouteTypeTheory) {
		filter.RouteType = models.RouteTypeTheory
	}
	filter.AllowHighSpeed = !req.BanHighSpeed
	filter.AllowBoat = !req.BanBoat
	filter.LRTOnly = req.OnlyLRT
	filter.AllowWildWalking = req.CalculateWalkingWild

	for _, l := range req.BannedLines {
		filter.IgnoredLines[routing.FoldLineName(l)] = struct{}{}
	}

	if len(req.OnlyLines) > 0 {
		allowed := make(map[string]struct{}, len(req.OnlyLines))
		for _, l := range req.OnlyLines {
			allowed[routing.FoldLineName(l)] = struct{}{}
		}
		for _, route := range s.Store.Routes() {
			if routeMatchesAny(route, allowed) {
				continue
			}
			filter.IgnoredLines[routing.FoldLineName(route.NameVariants()[0])] = struct{}{}
		}
	}

	for _, name := range req.BannedStations {
		id, ok := s.Resolver.ResolveStation(name, true)
		if !ok {
			return models.FilterSet{}, routingerr.Newf(routingerr.KindUnknownStation, "could not resolve banned station %q", name)
		}
		filter.AvoidedStations[id] = struct{}{}
	}

	return filter, nil
}

func routeMatchesAny(route *models.Route, allowed map[string]struct{}) bool {
	for _, v := range route.NameVariants() {
		if _, ok := allowed[routing.FoldLineName(v)]; ok {
			return true
		}
	}
	if route.Number != "" {
		if _, ok := allowed[routing.FoldLineName(route.Number)]; ok {
			return true
		}
	}
	return false
}
