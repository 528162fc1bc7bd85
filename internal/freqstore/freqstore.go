// Package freqstore computes and serves per-line mean headway, derived
// from a dump of observed departure times (§4.2). When no dump is
// available, callers fall back to the mode-default headways this
// package also exposes.
package freqstore

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
)

const (
	secondsPerDay = 86400
	roundTo       = 10
	minHeadway    = 10
)

// ModeDefaultSeconds is the mean-headway fallback used when a line has
// no observed-departure entry (§3 Frequency).
var ModeDefaultSeconds = map[string]float64{
	"train_high_speed": 600,
	"train_light_rail": 180,
	"boat_normal":       900,
	"boat_light_rail":   900,
	"boat_high_speed":   900,
	"cable_car_normal":  2,
}

// DefaultModeHeadway returns ModeDefaultSeconds[mode], or the "other" bucket
// (300s) when mode is not one of the entries with its own default.
func DefaultModeHeadway(mode string) float64 {
	if v, ok := ModeDefaultSeconds[mode]; ok {
		return v
	}
	return 300
}

// FrequencyStore maps a route's display name to its mean headway in
// seconds. A nil/empty FrequencyStore is valid: Lookup always reports
// "not found" and callers degrade to DefaultModeHeadway.
type FrequencyStore struct {
	headway map[string]float64
	version string
}

// Empty returns a FrequencyStore with no entries, used when the
// departures dump could not be loaded (§7 recovery policy: "Frequency
// fetch misses degrade silently to mode-default headways").
func Empty() *FrequencyStore {
	return &FrequencyStore{headway: map[string]float64{}, version: "empty"}
}

// Version is a fingerprint of the loaded content, stable across
// byte-identical reloads, for use as part of a GraphCache key (§4.8).
func (f *FrequencyStore) Version() string {
	if f == nil {
		return "empty"
	}
	return f.version
}

// Load reads a departures dump (§6.2 input to FrequencyStore: per route
// id, a sorted list of seconds-in-day) and computes mean_headway per
// route name.
func Load(path string, routeName func(routeID string) (string, bool)) (*FrequencyStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data, routeName)
}

// LoadBytes is Load without the filesystem read, for tests and for
// callers that already hold the dump in memory.
func LoadBytes(data []byte, routeName func(routeID string) (string, bool)) (*FrequencyStore, error) {
	var dump map[string][]float64
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, err
	}
	fs := &FrequencyStore{
		headway: make(map[string]float64, len(dump)),
		version: fmt.Sprintf("%d-%d", len(dump), len(data)),
	}
	for routeID, departures := range dump {
		name := routeID
		if routeName != nil {
			if n, ok := routeName(routeID); ok {
				name = n
			}
		}
		h := MeanHeadway(departures)
		if h > 0 {
			fs.headway[name] = h
		}
	}
	log.Printf("freqstore: computed headways for %d lines", len(fs.headway))
	return fs, nil
}

// MeanHeadway computes the low-median of consecutive departure deltas
// (with end-of-day wraparound), rounded to the nearest 10s, minimum 10s
// (§4.2). Returns 0 if fewer than one departure is given.
func MeanHeadway(departuresSecondsInDay []float64) float64 {
	n := len(departuresSecondsInDay)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), departuresSecondsInDay...)
	sort.Float64s(sorted)

	deltas := make([]float64, 0, n)
	for i := 0; i+1 < n; i++ {
		deltas = append(deltas, sorted[i+1]-sorted[i])
	}
	deltas = append(deltas, sorted[0]+secondsPerDay-sorted[n-1])

	sort.Float64s(deltas)
	lowMedianIdx := (len(deltas) - 1) / 2
	low := deltas[lowMedianIdx]

	rounded := math.Round(low/roundTo) * roundTo
	if rounded < minHeadway {
		rounded = minHeadway
	}
	return rounded
}

// Lookup returns the mean headway for a route's display name.
func (f *FrequencyStore) Lookup(routeName string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	v, ok := f.headway[routeName]
	return v, ok
}
