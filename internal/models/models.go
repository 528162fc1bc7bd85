// Package models holds the snapshot-level data records shared by every
// routing component: stations, routes and the filters a caller can apply
// to a route search.
package models

// Mode identifies a transport modality. Values match the snapshot's
// textual route type field verbatim (lower-cased, underscored).
type Mode string

const (
	ModeTrainNormal    Mode = "train_normal"
	ModeTrainLightRail Mode = "train_light_rail"
	ModeTrainHighSpeed Mode = "train_high_speed"
	ModeBoatNormal     Mode = "boat_normal"
	ModeBoatLightRail  Mode = "boat_light_rail"
	ModeBoatHighSpeed  Mode = "boat_high_speed"
	ModeCableCarNormal Mode = "cable_car_normal"
	ModeAirplaneNormal Mode = "airplane_normal"

	// ModeWalk tags a walking leg (transfer or wild). It is never present
	// in a loaded snapshot's route modes.
	ModeWalk Mode = "walk"
)

// IsBoat reports whether m is any of the boat_* modes.
func (m Mode) IsBoat() bool {
	switch m {
	case ModeBoatNormal, ModeBoatLightRail, ModeBoatHighSpeed:
		return true
	default:
		return false
	}
}

// IsHighSpeed reports whether m is the high-speed rail mode.
func (m Mode) IsHighSpeed() bool {
	return m == ModeTrainHighSpeed
}

// IsLightRail reports whether m is the light-rail train mode (the only
// mode `lrt_only` keeps).
func (m Mode) IsLightRail() bool {
	return m == ModeTrainLightRail
}

// Circular is the tri-valued loop-orientation state of a route.
type Circular string

const (
	CircularNone Circular = "none"
	Clockwise    Circular = "clockwise"
	CounterClock Circular = "counterclockwise"
)

// RouteType selects whether the engine charges expected waiting time per
// boarding (Waiting) or only in-vehicle time (Theory).
type RouteType string

const (
	RouteTypeTheory  RouteType = "theory"
	RouteTypeWaiting RouteType = "waiting"
)

// Station is a single stop in the snapshot. A Station with Routable
// false must never become a graph vertex.
type Station struct {
	ID          string
	Name        string // pipe-separated script variants
	ShortID     string // compact hex id, stable within a snapshot
	X, Z        float64
	Routable    bool
	Connections []string // declared transfer-connected station ids
}

// NameVariants splits Name on '|' into its script variants. Always
// returns at least one element.
func (s Station) NameVariants() []string {
	return splitPipe(s.Name)
}

func splitPipe(s string) []string {
	if s == "" {
		return []string{""}
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// Route is a single scheduled line in one direction (or loop orientation).
type Route struct {
	ID        string
	Name      string // pipe-separated script variants
	Number    string
	Mode      Mode
	Circular  Circular
	Stops     []string  // ordered station ids, len >= 2 to be usable
	Durations []float64 // seconds; Durations[i] = time from Stops[i] to Stops[i+1]
	DwellTime []float64 // seconds dwelt at Stops[i] before departing again, 0 if absent
	Colour    uint32    // 24-bit RGB, presentation only
}

// NameVariants splits Name on '|' into its script variants.
func (r Route) NameVariants() []string {
	return splitPipe(r.Name)
}

// Usable reports whether the route has enough stops and a Durations
// slice consistent with them. Zero entries are still "usable"; they are
// filled in by geometric interpolation before the route enters the graph.
func (r Route) Usable() bool {
	return len(r.Stops) >= 2 && len(r.Durations) == len(r.Stops)-1
}

// FilterSet is the per-request policy GraphBuilder applies when turning
// a snapshot into a graph.
type FilterSet struct {
	IgnoredLines     map[string]struct{} // case-folded, script-normalized line names/numbers
	AvoidedStations  map[string]struct{} // station ids to omit as vertices
	AllowHighSpeed   bool
	AllowBoat        bool
	LRTOnly          bool
	AllowWildWalking bool
	RouteType        RouteType
	MaxWildBlocks    float64 // distance cap for wild-walk edges
}

// DefaultMaxWildBlocks is the distance cap used when a FilterSet does not
// set one explicitly.
const DefaultMaxWildBlocks = 1500

// NewFilterSet returns a FilterSet with the spec's defaults: waiting
// route type, boats allowed, no LRT restriction, default wild-walk cap.
func NewFilterSet() FilterSet {
	return FilterSet{
		IgnoredLines:    map[string]struct{}{},
		AvoidedStations: map[string]struct{}{},
		AllowBoat:       true,
		RouteType:       RouteTypeWaiting,
		MaxWildBlocks:   DefaultMaxWildBlocks,
	}
}

// IsStandard reports whether f matches the filter shape GraphCache is
// willing to persist (§4.8): empty avoided-station set, boats allowed,
// no LRT-only restriction, waiting route type. Ignored lines and the
// high-speed/wild-walking toggles still participate in the cache key.
func (f FilterSet) IsStandard() bool {
	return len(f.AvoidedStations) == 0 && f.AllowBoat && !f.LRTOnly && f.RouteType == RouteTypeWaiting
}

// Leg is a single uninterrupted in-vehicle or walking segment of an
// itinerary.
type Leg struct {
	From, To  string // station ids
	Labels    []string
	Mode      Mode
	Colour    uint32
	Terminus  string
	DurationS float64
	WaitingS  float64
	HeadwayS  float64
	IsWalk    bool
	Polyline  string // encoded leg geometry, populated by the formatter
}

// Itinerary is the ordered result of a successful route search.
type Itinerary struct {
	Legs       []Leg
	TotalS     float64
	InVehicleS float64
	WaitingS   float64
}
