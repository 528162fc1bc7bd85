package routing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/antigravity/mtr-router/internal/freqstore"
	"github.com/antigravity/mtr-router/internal/geometry"
	"github.com/antigravity/mtr-router/internal/mapstore"
	"github.com/antigravity/mtr-router/internal/models"
	"github.com/antigravity/mtr-router/internal/routingerr"
)

const (
	transferWalkSpeed = 4.317 // blocks/second, §4.5.2
	wildWalkSpeed     = 2.25  // blocks/second, §4.5.3
	// preemptionMarginSeconds is how much faster a wild walk must be than
	// the existing rail edge before the rail edge is removed (§4.5.3).
	preemptionMarginSeconds = 120
)

// Builder constructs the weighted multi-digraph a filter set implies,
// from a loaded map and frequency snapshot (§4.5, "the central
// algorithm"). A Builder is safe for concurrent use; Build never
// mutates shared state beyond persisting interpolated route durations
// back onto the MapStore (§4.5.4).
type Builder struct {
	Store *mapstore.MapStore
	Freq  *freqstore.FrequencyStore

	// TransferAddition and WildAddition are the "configured" named-extra-
	// neighbour tables (§4.5.2, §4.5.3). The specification leaves their
	// source and exact format to the implementer; here both are supplied
	// pre-resolved to station ids (resolution against free-text names, if
	// any, is the caller's job via NameResolver before constructing a
	// Builder) so the graph-building core stays free of fuzzy matching.
	TransferAddition map[string][]string
	WildAddition     map[string][]string
}

// NewBuilder constructs a Builder with no configured extra neighbours.
func NewBuilder(store *mapstore.MapStore, freq *freqstore.FrequencyStore) *Builder {
	return &Builder{Store: store, Freq: freq}
}

// Build runs the full pipeline of §4.5 and returns the resulting graph.
func (b *Builder) Build(ctx context.Context, filter models.FilterSet) (*Graph, error) {
	g := newGraph()

	for _, s := range b.Store.Stations() {
		if !s.Routable {
			continue
		}
		if _, avoided := filter.AvoidedStations[s.ID]; avoided {
			continue
		}
		g.addVertex(s.ID)
	}

	candidates := map[pairKey][]candidate{}
	addCandidate := func(c candidate) {
		key := pairKey{c.from, c.to}
		candidates[key] = append(candidates[key], c)
	}

	b.addTransferEdges(g, addCandidate)

	if err := b.addRailCandidates(ctx, g, filter, addCandidate); err != nil {
		return nil, err
	}

	if filter.AllowWildWalking {
		b.addNamedWildEdges(g, addCandidate)
		b.addGeneralWildWalking(g, filter, candidates, addCandidate)
	}

	pairKeys := make([]pairKey, 0, len(candidates))
	for key := range candidates {
		pairKeys = append(pairKeys, key)
	}
	sort.Slice(pairKeys, func(i, j int) bool {
		if pairKeys[i].from != pairKeys[j].from {
			return pairKeys[i].from < pairKeys[j].from
		}
		return pairKeys[i].to < pairKeys[j].to
	})

	for _, key := range pairKeys {
		for _, e := range collapsePair(filter.RouteType, candidates[key]) {
			e.To = key.to
			g.addEdge(key.from, e)
		}
	}

	return g, nil
}

func (b *Builder) addTransferEdges(g *Graph, addCandidate func(candidate)) {
	for _, s := range b.Store.Stations() {
		if !g.HasVertex(s.ID) {
			continue
		}
		neighbours := map[string]struct{}{}
		for _, t := range s.Connections {
			neighbours[t] = struct{}{}
		}
		for _, t := range b.TransferAddition[s.ID] {
			neighbours[t] = struct{}{}
		}
		for t := range neighbours {
			if t == s.ID || !g.HasVertex(t) {
				continue
			}
			other, ok := b.Store.StationByID(t)
			if !ok {
				continue
			}
			d := geometry.Distance(geometry.Point{X: s.X, Z: s.Z}, geometry.Point{X: other.X, Z: other.Z})
			dur := d / transferWalkSpeed
			label := fmt.Sprintf("transfer walk %dm", int(math.Round(d)))
			addCandidate(candidate{from: s.ID, to: t, kind: kindTransferWalk, label: label, mode: models.ModeWalk, durationS: dur})
			addCandidate(candidate{from: t, to: s.ID, kind: kindTransferWalk, label: label, mode: models.ModeWalk, durationS: dur})
		}
	}
}

func (b *Builder) addNamedWildEdges(g *Graph, addCandidate func(candidate)) {
	for _, s := range b.Store.Stations() {
		if !g.HasVertex(s.ID) {
			continue
		}
		for _, t := range b.WildAddition[s.ID] {
			if t == s.ID || !g.HasVertex(t) {
				continue
			}
			other, ok := b.Store.StationByID(t)
			if !ok {
				continue
			}
			d := geometry.Distance(geometry.Point{X: s.X, Z: s.Z}, geometry.Point{X: other.X, Z: other.Z})
			dur := d / wildWalkSpeed
			label := fmt.Sprintf("wild walk %dm", int(math.Round(d)))
			addCandidate(candidate{from: s.ID, to: t, kind: kindWildWalk, label: label, mode: models.ModeWalk, durationS: dur})
			addCandidate(candidate{from: t, to: s.ID, kind: kindWildWalk, label: label, mode: models.ModeWalk, durationS: dur})
		}
	}
}

// addGeneralWildWalking implements the pairwise pass of §4.5.3: for
// every vertex pair within max_wild_blocks that has no transfer or
// wild-walk candidate yet, add a wild-walk candidate unless a rail edge
// is at most CollapseWindowSeconds slower than walking; if walking beats
// the rail edge by more than preemptionMarginSeconds, the rail edge is
// removed as well.
func (b *Builder) addGeneralWildWalking(g *Graph, filter models.FilterSet, candidates map[pairKey][]candidate, addCandidate func(candidate)) {
	maxSq := filter.MaxWildBlocks * filter.MaxWildBlocks
	vertices := make([]string, 0, len(g.Vertices))
	for id := range g.Vertices {
		vertices = append(vertices, id)
	}
	sort.Strings(vertices)

	for _, u := range vertices {
		su, ok := b.Store.StationByID(u)
		if !ok {
			continue
		}
		for _, v := range vertices {
			if u >= v {
				continue // each unordered pair considered once; edges added both directions below
			}
			key := pairKey{u, v}
			if hasWalkCandidate(candidates[key]) {
				continue
			}
			sv, ok := b.Store.StationByID(v)
			if !ok {
				continue
			}
			dx := su.X - sv.X
			dz := su.Z - sv.Z
			distSq := dx*dx + dz*dz
			if distSq > maxSq {
				continue
			}
			d := math.Sqrt(distSq)
			walkDur := d / wildWalkSpeed

			railMin, hasRail := minRailDuration(candidates[pairKey{u, v}])

			if hasRail && railMin <= walkDur+CollapseWindowSeconds {
				continue
			}
			if hasRail && railMin-walkDur > preemptionMarginSeconds {
				candidates[pairKey{u, v}] = removeRailCandidates(candidates[pairKey{u, v}])
				candidates[pairKey{v, u}] = removeRailCandidates(candidates[pairKey{v, u}])
			}
			label := fmt.Sprintf("wild walk %dm", int(math.Round(d)))
			addCandidate(candidate{from: u, to: v, kind: kindWildWalk, label: label, mode: models.ModeWalk, durationS: walkDur})
			addCandidate(candidate{from: v, to: u, kind: kindWildWalk, label: label, mode: models.ModeWalk, durationS: walkDur})
		}
	}
}

func hasWalkCandidate(cs []candidate) bool {
	for _, c := range cs {
		if c.kind != kindRail {
			return true
		}
	}
	return false
}

func minRailDuration(cs []candidate) (float64, bool) {
	min := 0.0
	found := false
	for _, c := range cs {
		if c.kind != kindRail {
			continue
		}
		if !found || c.durationS < min {
			min = c.durationS
			found = true
		}
	}
	return min, found
}

func removeRailCandidates(cs []candidate) []candidate {
	var out []candidate
	for _, c := range cs {
		if c.kind != kindRail {
			out = append(out, c)
		}
	}
	return out
}

// addRailCandidates implements line inclusion (§4.5.4) and the
// C(|stops|, 2) candidate-edge enumeration of §4.5.5.
func (b *Builder) addRailCandidates(ctx context.Context, g *Graph, filter models.FilterSet, addCandidate func(candidate)) error {
	for _, route := range b.Store.Routes() {
		if err := ctx.Err(); err != nil {
			return routingerr.Wrap(routingerr.KindCancelled, err, "route inclusion")
		}
		if !b.routeIncluded(route, filter) {
			continue
		}

		durations, err := b.interpolatedDurations(route)
		if err != nil {
			return err
		}
		if !sameLengths(durations, route.Durations) {
			b.Store.UpdateRouteDurations(route.ID, durations)
			route.Durations = durations
		}

		label := route.NameVariants()[0]
		headway := b.headwayFor(route)
		n := len(route.Stops)

		for i := 0; i < n; i++ {
			if _, avoided := filter.AvoidedStations[route.Stops[i]]; avoided {
				continue
			}
			if !g.HasVertex(route.Stops[i]) {
				continue
			}
			inVehicle := 0.0
			for j := i + 1; j < n; j++ {
				if _, avoided := filter.AvoidedStations[route.Stops[j]]; avoided {
					break
				}
				if !g.HasVertex(route.Stops[j]) {
					break
				}
				inVehicle += durations[j-1]
				dur := inVehicle + dwellBetween(route, i, j)
				term := terminusFor(b.Store, route, i)
				g.recordOriginal(label, route.Stops[i], route.Stops[j], dur)
				addCandidate(candidate{
					from:      route.Stops[i],
					to:        route.Stops[j],
					kind:      kindRail,
					label:     label,
					mode:      route.Mode,
					colour:    route.Colour,
					terminus:  term,
					durationS: dur,
					headwayS:  headway,
				})
			}
		}
	}
	return nil
}

// dwellBetween sums DwellTime[i+1 .. j-1], the time spent stopped at
// every intermediate stop of the candidate edge stops[i]->stops[j].
func dwellBetween(route *models.Route, i, j int) float64 {
	var total float64
	for k := i + 1; k < j; k++ {
		if k < len(route.DwellTime) {
			total += route.DwellTime[k]
		}
	}
	return total
}

func (b *Builder) routeIncluded(route *models.Route, filter models.FilterSet) bool {
	if !route.Usable() {
		return false
	}
	for _, v := range route.NameVariants() {
		if _, ignored := filter.IgnoredLines[FoldLineName(v)]; ignored {
			return false
		}
	}
	if route.Number != "" {
		if _, ignored := filter.IgnoredLines[FoldLineName(route.Number)]; ignored {
			return false
		}
	}
	if route.Mode.IsHighSpeed() && !filter.AllowHighSpeed {
		return false
	}
	if route.Mode.IsBoat() && !filter.AllowBoat {
		return false
	}
	if filter.LRTOnly && !route.Mode.IsLightRail() {
		return false
	}
	return true
}

// FoldLineName is the case/script normalisation §4.5.4 requires for
// matching against F.ignored_lines; callers populate IgnoredLines using
// the same folding so membership tests agree.
func FoldLineName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (b *Builder) headwayFor(route *models.Route) float64 {
	if h, ok := b.Freq.Lookup(route.NameVariants()[0]); ok {
		return h
	}
	return freqstore.DefaultModeHeadway(string(route.Mode))
}

// interpolatedDurations fills zero entries in route.Durations via
// geometric nominal time (§4.3, §4.5.4), flooring a still-zero result to
// 0.01s to avoid a degenerate edge.
func (b *Builder) interpolatedDurations(route *models.Route) ([]float64, error) {
	out := append([]float64(nil), route.Durations...)
	for i, d := range out {
		if d > 0 {
			continue
		}
		p1, ok1 := b.stationPoint(route.Stops[i])
		p2, ok2 := b.stationPoint(route.Stops[i+1])
		if !ok1 || !ok2 {
			// Missing coordinates: drop to the degeneracy floor rather than
			// the whole candidate edge, per the recovery policy of §7.
			out[i] = 0.01
			continue
		}
		nominal := geometry.NominalTime(string(route.Mode), []geometry.Point{p1, p2})
		if nominal <= 0 {
			nominal = 0.01
		}
		out[i] = nominal
	}
	return out, nil
}

func (b *Builder) stationPoint(id string) (geometry.Point, bool) {
	s, ok := b.Store.StationByID(id)
	if !ok || !s.Routable {
		return geometry.Point{}, false
	}
	return geometry.Point{X: s.X, Z: s.Z}, true
}

func sameLengths(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// terminusFor computes the displayed terminus for boarding route at
// stop index i (§4.7, the asymmetric circular-terminus rule of §9 Open
// Question 2): non-circular routes always show the line's last stop;
// circular routes show "(clockwise) via <next stop>" at every boarding
// position except the line's last listed stop, where they show
// "(clockwise) <last stop>" without "via".
func terminusFor(store *mapstore.MapStore, route *models.Route, i int) string {
	lastIdx := len(route.Stops) - 1
	lastName := stationDisplayName(store, route.Stops[lastIdx])
	if route.Circular == models.CircularNone {
		return lastName
	}
	dir := "(clockwise)"
	if route.Circular == models.CounterClock {
		dir = "(counterclockwise)"
	}
	if i == lastIdx {
		return dir + " " + lastName
	}
	nextName := stationDisplayName(store, route.Stops[i+1])
	return dir + " via " + nextName
}

func stationDisplayName(store *mapstore.MapStore, id string) string {
	if s, ok := store.StationByID(id); ok {
		return s.NameVariants()[0]
	}
	return id
}
