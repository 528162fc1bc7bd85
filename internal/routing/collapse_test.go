package routing

import (
	"testing"

	"github.com/antigravity/mtr-router/internal/models"
)

func TestCombinedWaitingHarmonicMeanSanity(t *testing.T) {
	// §8: two lines of headway 6 min and 3 min -> waiting = 1 min.
	got := combinedWaiting([]int64{360, 180})
	if got != 60 {
		t.Fatalf("expected 60s waiting, got %v", got)
	}
}

func TestCombinedWaitingSingleLine(t *testing.T) {
	got := combinedWaiting([]int64{300})
	if got != 150 {
		t.Fatalf("expected 150s waiting for a lone 300s headway, got %v", got)
	}
}

func TestCombinedWaitingNoRailLines(t *testing.T) {
	if got := combinedWaiting(nil); got != 0 {
		t.Fatalf("expected 0 waiting with no rail headways, got %v", got)
	}
}

func TestLcmInt64(t *testing.T) {
	if got := lcmInt64(360, 180); got != 360 {
		t.Fatalf("expected lcm(360,180)=360, got %v", got)
	}
	if got := lcmInt64(6, 4); got != 12 {
		t.Fatalf("expected lcm(6,4)=12, got %v", got)
	}
}

func TestFilterNearMinWeightDropsNonPositiveAndFarEdges(t *testing.T) {
	edges := []Edge{
		{DurationS: 100, WaitingS: 0},   // weight 100, min
		{DurationS: 140, WaitingS: 0},   // weight 140, within 60 of min
		{DurationS: 300, WaitingS: 0},   // weight 300, too far
		{DurationS: 0, WaitingS: 0},     // weight 0, dropped
	}
	got := filterNearMinWeight(edges)
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving edges, got %d: %+v", len(got), got)
	}
}

func TestCollapsePairTheoryKeepsAllCandidates(t *testing.T) {
	cs := []candidate{
		{from: "a", to: "b", kind: kindRail, label: "L1", durationS: 100},
		{from: "a", to: "b", kind: kindRail, label: "L2", durationS: 105},
	}
	edges := collapsePair(models.RouteTypeTheory, cs)
	if len(edges) != 2 {
		t.Fatalf("expected both theory-mode candidates retained, got %d", len(edges))
	}
}
