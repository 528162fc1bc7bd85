// Package mapstore loads and validates a Minecraft Transit Railway map
// snapshot: stations, routes, durations and colours (§4.1, §6.1).
package mapstore

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/antigravity/mtr-router/internal/models"
	"github.com/antigravity/mtr-router/internal/routingerr"
)

// MapStore is an immutable-between-refreshes view of a loaded snapshot,
// plus the derived tables (computed coordinates, interpolated durations)
// that live alongside it. Reloading builds a fresh MapStore; callers
// swap the pointer rather than mutate one in place.
type MapStore struct {
	stationsByID map[string]*models.Station
	stationOrder []string // enumeration order hex ids were assigned in

	routesByID map[string]*models.Route
	routeOrder []string

	version string // content fingerprint for GraphCache keys
}

// rawSnapshot mirrors §6.1's JSON shape.
type rawSnapshot struct {
	Stations map[string]rawStation `json:"stations"`
	Routes   []rawRoute            `json:"routes"`
}

type rawStation struct {
	Name        string    `json:"name"`
	Color       json.RawMessage `json:"color"`
	X           *float64  `json:"x"`
	Z           *float64  `json:"z"`
	Connections []string  `json:"connections"`
	DwellTime   *float64  `json:"dwellTime"`
}

type rawRoute struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Number        string          `json:"number"`
	Color         json.RawMessage `json:"color"`
	Type          string          `json:"type"`
	CircularState string          `json:"circularState"`
	Stations      []rawRouteStop  `json:"stations"`
	Durations     []float64       `json:"durations"`
}

type rawRouteStop struct {
	ID        string   `json:"id"`
	X         *float64 `json:"x"`
	Z         *float64 `json:"z"`
	DwellTime *float64 `json:"dwellTime"`
}

// Load reads and normalizes the snapshot at path.
func Load(path string) (*MapStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, routingerr.Wrap(routingerr.KindInvalidSnapshot, err, "read map snapshot")
	}
	return LoadBytes(data)
}

// LoadBytes normalizes a snapshot already read into memory. Accepts
// both the object shape and the legacy single-element-array wrapper.
func LoadBytes(data []byte) (*MapStore, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, routingerr.Wrap(routingerr.KindInvalidSnapshot, err, "decode map snapshot")
	}
	if len(raw.Stations) == 0 {
		return nil, routingerr.New(routingerr.KindInvalidSnapshot, "snapshot has no stations")
	}
	if len(raw.Routes) == 0 {
		return nil, routingerr.New(routingerr.KindInvalidSnapshot, "snapshot has no routes")
	}

	ms := &MapStore{
		stationsByID: make(map[string]*models.Station, len(raw.Stations)),
		routesByID:   make(map[string]*models.Route, len(raw.Routes)),
	}

	// coordinate accumulation: mean of every contribution (the station's
	// own x/z, if present, plus each route-stop's x/z for that station).
	sumX := make(map[string]float64)
	sumZ := make(map[string]float64)
	count := make(map[string]int)

	stationIDs := make([]string, 0, len(raw.Stations))
	for id := range raw.Stations {
		stationIDs = append(stationIDs, id)
	}
	sort.Strings(stationIDs)

	for _, id := range stationIDs {
		rs := raw.Stations[id]
		s := &models.Station{
			ID:          id,
			Name:        rs.Name,
			Connections: append([]string(nil), rs.Connections...),
		}
		if rs.X != nil && rs.Z != nil {
			sumX[id] += *rs.X
			sumZ[id] += *rs.Z
			count[id]++
		}
		ms.stationsByID[id] = s
	}

	for ri, rr := range raw.Routes {
		if rr.ID == "" {
			return nil, routingerr.Newf(routingerr.KindInvalidSnapshot, "route at index %d has no id", ri)
		}
		stops := make([]string, 0, len(rr.Stations))
		for _, rst := range rr.Stations {
			if _, ok := ms.stationsByID[rst.ID]; !ok {
				return nil, routingerr.Newf(routingerr.KindInvalidSnapshot,
					"route %s references unknown station %s", rr.ID, rst.ID)
			}
			stops = append(stops, rst.ID)
			if rst.X != nil && rst.Z != nil {
				sumX[rst.ID] += *rst.X
				sumZ[rst.ID] += *rst.Z
				count[rst.ID]++
			}
		}

		durations := make([]float64, len(rr.Durations))
		for i, durMS := range rr.Durations {
			durations[i] = math.Round(durMS / 1000.0)
		}

		dwell := make([]float64, len(rr.Stations))
		for i, rst := range rr.Stations {
			if rst.DwellTime != nil {
				dwell[i] = *rst.DwellTime
			}
		}

		route := &models.Route{
			ID:        rr.ID,
			Name:      rr.Name,
			Number:    rr.Number,
			Mode:      models.Mode(strings.ToLower(strings.TrimSpace(rr.Type))),
			Circular:  parseCircular(rr.CircularState),
			Stops:     stops,
			Durations: durations,
			DwellTime: dwell,
			Colour:    parseColour(rr.Color),
		}
		ms.routesByID[route.ID] = route
		ms.routeOrder = append(ms.routeOrder, route.ID)
	}

	// finalize computed coordinates and routability, assign hex ids in
	// enumeration (sorted-id) order.
	for idx, id := range stationIDs {
		s := ms.stationsByID[id]
		if n := count[id]; n > 0 {
			s.X = sumX[id] / float64(n)
			s.Z = sumZ[id] / float64(n)
			s.Routable = true
		}
		s.ShortID = strconv.FormatInt(int64(idx), 16)
		ms.stationOrder = append(ms.stationOrder, id)
	}

	ms.version = fmt.Sprintf("%d-%d-%d", len(ms.stationsByID), len(ms.routesByID), len(data))
	log.Printf("mapstore: loaded %d stations (%d routable), %d routes",
		len(ms.stationsByID), countRoutable(ms.stationsByID), len(ms.routesByID))
	return ms, nil
}

func countRoutable(m map[string]*models.Station) int {
	n := 0
	for _, s := range m {
		if s.Routable {
			n++
		}
	}
	return n
}

// decodeRaw accepts both the object shape and the legacy single-element
// array wrapper.
func decodeRaw(data []byte) (rawSnapshot, error) {
	var obj rawSnapshot
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Stations != nil || obj.Routes != nil) {
		return obj, nil
	}
	var arr []rawSnapshot
	if err := json.Unmarshal(data, &arr); err != nil {
		return rawSnapshot{}, fmt.Errorf("snapshot is neither an object nor a legacy array: %w", err)
	}
	if len(arr) == 0 {
		return rawSnapshot{}, fmt.Errorf("legacy snapshot array is empty")
	}
	return arr[0], nil
}

func parseCircular(s string) models.Circular {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clockwise":
		return models.Clockwise
	case "counterclockwise", "anticlockwise":
		return models.CounterClock
	default:
		return models.CircularNone
	}
}

func parseColour(raw json.RawMessage) uint32 {
	if len(raw) == 0 {
		return 0
	}
	var asInt int64
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return uint32(asInt)
	}
	var asStr string
	if err := json.Unmarshal(raw, &asStr); err == nil {
		asStr = strings.TrimPrefix(asStr, "#")
		if v, err := strconv.ParseUint(asStr, 16, 32); err == nil {
			return uint32(v)
		}
	}
	return 0
}

// Stations returns every station in the snapshot, in hex-id enumeration
// order.
func (m *MapStore) Stations() []*models.Station {
	out := make([]*models.Station, 0, len(m.stationOrder))
	for _, id := range m.stationOrder {
		out = append(out, m.stationsByID[id])
	}
	return out
}

// Routes returns every route in the snapshot, in load order.
func (m *MapStore) Routes() []*models.Route {
	out := make([]*models.Route, 0, len(m.routeOrder))
	for _, id := range m.routeOrder {
		out = append(out, m.routesByID[id])
	}
	return out
}

// StationByID looks up a station by its opaque id.
func (m *MapStore) StationByID(id string) (*models.Station, bool) {
	s, ok := m.stationsByID[id]
	return s, ok
}

// RouteByID looks up a route by its opaque id.
func (m *MapStore) RouteByID(id string) (*models.Route, bool) {
	r, ok := m.routesByID[id]
	return r, ok
}

// Version is a fingerprint of the loaded content, stable across
// byte-identical reloads, for use as part of a GraphCache key.
func (m *MapStore) Version() string {
	return m.version
}

// UpdateRouteDurations persists geometrically-interpolated durations
// back onto the stored route (§4.5.4: "Updated durations are persisted
// back to the map snapshot"), so later graph builds skip recomputation.
func (m *MapStore) UpdateRouteDurations(routeID string, durations []float64) {
	if r, ok := m.routesByID[routeID]; ok {
		r.Durations = durations
	}
}
