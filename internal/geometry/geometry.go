// Package geometry computes station-to-station distances and the
// nominal travel time used to fill in missing route segment durations.
package geometry

import "math"

// modeSpeed is blocks/second, indexed by the snapshot's mode string.
var modeSpeed = map[string]float64{
	"train_normal":     14,
	"train_light_rail": 11,
	"train_high_speed": 40,
	"boat_normal":      10,
	"boat_light_rail":  10,
	"boat_high_speed":  13,
	"cable_car_normal": 8,
	"airplane_normal":  70,
}

// ModeSpeed returns the nominal blocks/second for mode, or 0 if mode is
// not one of the eight known transport modalities.
func ModeSpeed(mode string) float64 {
	return modeSpeed[mode]
}

// Point is a station's plane coordinates.
type Point struct {
	X, Z float64
}

// Distance returns the Euclidean distance between a and b in blocks.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// NominalTime sums Distance(p,q)/speed over every consecutive pair of
// points in stops, where speed is ModeSpeed(mode). Used only to
// fill zero or missing Durations entries; callers must round the result
// up from zero per §4.3 (see routing.Builder).
func NominalTime(mode string, stops []Point) float64 {
	speed := ModeSpeed(mode)
	if speed <= 0 || len(stops) < 2 {
		return 0
	}
	var total float64
	for i := 0; i+1 < len(stops); i++ {
		total += Distance(stops[i], stops[i+1]) / speed
	}
	return total
}
