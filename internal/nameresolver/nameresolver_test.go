package nameresolver

import (
	"testing"

	"github.com/antigravity/mtr-router/internal/mapstore"
)

const sampleMap = `{
  "stations": {
    "central": {"name": "Central Station|中央站", "x": 0, "z": 0, "connections": []},
    "airport": {"name": "Airport|機場", "x": 100, "z": 0, "connections": []},
    "hidden": {"name": "Hidden Depot", "connections": []}
  },
  "routes": [
    {
      "id": "r1",
      "name": "Red Line",
      "number": "1",
      "type": "train_normal",
      "stations": [
        {"id": "central", "x": 0, "z": 0},
        {"id": "airport", "x": 100, "z": 0}
      ],
      "durations": [60000]
    }
  ]
}`

func newTestResolver(t *testing.T) *NameResolver {
	t.Helper()
	ms, err := mapstore.LoadBytes([]byte(sampleMap))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	return New(ms, NewTableConverter())
}

func TestResolveStationExactMatch(t *testing.T) {
	r := newTestResolver(t)
	id, ok := r.ResolveStation("Central Station", false)
	if !ok || id != "central" {
		t.Fatalf("expected central, got %q ok=%v", id, ok)
	}
}

func TestResolveStationExactMatchCaseAndWidthFold(t *testing.T) {
	r := newTestResolver(t)
	id, ok := r.ResolveStation("ＣＥＮＴＲＡＬ STATION", false)
	if !ok || id != "central" {
		t.Fatalf("expected central via case and width fold, got %q ok=%v", id, ok)
	}
}

func TestResolveStationPipeVariant(t *testing.T) {
	r := newTestResolver(t)
	id, ok := r.ResolveStation("中央站", false)
	if !ok || id != "central" {
		t.Fatalf("expected central via script variant, got %q ok=%v", id, ok)
	}
}

func TestResolveStationIgnoresUnroutable(t *testing.T) {
	r := newTestResolver(t)
	if _, ok := r.ResolveStation("Hidden Depot", false); ok {
		t.Fatal("expected unroutable station to not resolve")
	}
}

func TestResolveStationNoFuzzyFailsOnTypo(t *testing.T) {
	r := newTestResolver(t)
	if _, ok := r.ResolveStation("Centrl Staton", false); ok {
		t.Fatal("expected non-fuzzy lookup to reject a typo")
	}
}

func TestResolveStationFuzzyRecoversTypo(t *testing.T) {
	r := newTestResolver(t)
	id, ok := r.ResolveStation("Centrl Station", true)
	if !ok || id != "central" {
		t.Fatalf("expected fuzzy match to recover central, got %q ok=%v", id, ok)
	}
}

func TestResolveStationFuzzyMemoized(t *testing.T) {
	r := newTestResolver(t)
	id1, ok1 := r.ResolveStation("Centrl Station", true)
	id2, ok2 := r.ResolveStation("Centrl Station", true)
	if !ok1 || !ok2 || id1 != id2 {
		t.Fatalf("expected memoized fuzzy lookup to be stable, got %q/%v %q/%v", id1, ok1, id2, ok2)
	}
}

func TestClearResetsMemo(t *testing.T) {
	r := newTestResolver(t)
	r.ResolveStation("Centrl Station", true)
	r.Clear()
	id, ok := r.ResolveStation("Centrl Station", true)
	if !ok || id != "central" {
		t.Fatalf("expected fuzzy lookup to still resolve after clear, got %q ok=%v", id, ok)
	}
}

func TestResolveRoutesByNameAndNumber(t *testing.T) {
	r := newTestResolver(t)
	ids := r.ResolveRoutes("Red Line 1")
	if len(ids) != 1 || ids[0] != "r1" {
		t.Fatalf("expected [r1], got %v", ids)
	}
}

func TestResolveRoutesByNameOnly(t *testing.T) {
	r := newTestResolver(t)
	ids := r.ResolveRoutes("Red Line")
	if len(ids) != 1 || ids[0] != "r1" {
		t.Fatalf("expected [r1], got %v", ids)
	}
}

func TestResolveRoutesUnknown(t *testing.T) {
	r := newTestResolver(t)
	if ids := r.ResolveRoutes("Blue Line"); len(ids) != 0 {
		t.Fatalf("expected no matches, got %v", ids)
	}
}
