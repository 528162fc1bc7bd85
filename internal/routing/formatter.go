package routing

import (
	"sort"

	polyline "github.com/twpayne/go-polyline"

	"github.com/antigravity/mtr-router/internal/mapstore"
	"github.com/antigravity/mtr-router/internal/models"
	"github.com/antigravity/mtr-router/internal/routingerr"
)

// ItineraryFormatter re-expands a winning path into the human-legible
// leg sequence of §4.7.
type ItineraryFormatter struct {
	Store *mapstore.MapStore
}

// NewItineraryFormatter builds a formatter over store, used only to
// encode leg geometry from station coordinates.
func NewItineraryFormatter(store *mapstore.MapStore) *ItineraryFormatter {
	return &ItineraryFormatter{Store: store}
}

// Format walks path and produces the Itinerary, grouping near-tied
// parallel edges at each hop into a single step (§3, §4.7: "alternate
// legs ... grouped under the same step").
func (f *ItineraryFormatter) Format(g *Graph, path []string) (models.Itinerary, error) {
	if len(path) < 2 {
		return models.Itinerary{}, routingerr.New(routingerr.KindInternalInvariant, "path has fewer than two stations")
	}

	var legs []models.Leg
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		candidates := edgesBetween(g, from, to)
		if len(candidates) == 0 {
			return models.Itinerary{}, routingerr.Newf(routingerr.KindInternalInvariant, "no edge recorded for %s -> %s", from, to)
		}
		leg := mergeLegStep(from, to, candidates)
		leg.Polyline = f.encodeLegGeometry(from, to)
		legs = append(legs, leg)
	}

	var total, inVehicle, waiting float64
	for _, leg := range legs {
		inVehicle += leg.DurationS
		waiting += leg.WaitingS
	}
	total = inVehicle + waiting

	return models.Itinerary{Legs: legs, TotalS: total, InVehicleS: inVehicle, WaitingS: waiting}, nil
}

func edgesBetween(g *Graph, from, to string) []Edge {
	var out []Edge
	for _, e := range g.Edges(from) {
		if e.To == to {
			out = append(out, e)
		}
	}
	return out
}

// mergeLegStep groups edges whose duration is within CollapseWindowSeconds
// of the fastest into one displayed step (§3's "alternate legs").
func mergeLegStep(from, to string, edges []Edge) models.Leg {
	sorted := append([]Edge(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DurationS < sorted[j].DurationS })

	minDur := sorted[0].DurationS
	var group []Edge
	for _, e := range sorted {
		if e.DurationS-minDur <= CollapseWindowSeconds {
			group = append(group, e)
		}
	}

	labelSet := map[string]struct{}{}
	var labels []string
	for _, e := range group {
		for _, l := range e.Labels {
			if _, ok := labelSet[l]; !ok {
				labelSet[l] = struct{}{}
				labels = append(labels, l)
			}
		}
	}
	sort.Strings(labels)

	primary := group[0]
	return models.Leg{
		From:      from,
		To:        to,
		Labels:    labels,
		Mode:      primary.Mode,
		Colour:    primary.Colour,
		Terminus:  primary.Terminus,
		DurationS: primary.DurationS,
		WaitingS:  primary.WaitingS,
		HeadwayS:  primary.HeadwayS,
		IsWalk:    primary.IsWalk,
	}
}

// encodeLegGeometry produces a polyline-encoded two-point path between
// the leg's endpoints. Station coordinates are Minecraft world blocks,
// not lat/lng, but the codec is a pure numeric encoder and the
// presentation layer (out of scope, §1) is expected to interpret the
// pair accordingly.
func (f *ItineraryFormatter) encodeLegGeometry(from, to string) string {
	fromStation, ok1 := f.Store.StationByID(from)
	toStation, ok2 := f.Store.StationByID(to)
	if !ok1 || !ok2 {
		return ""
	}
	coords := [][]float64{
		{fromStation.X, fromStation.Z},
		{toStation.X, toStation.Z},
	}
	return string(polyline.EncodeCoords(coords))
}
