package freqstore

import "testing"

func TestMeanHeadwayEvenSpacing(t *testing.T) {
	// departures every 300s starting at 0: deltas are all 300 (plus wrap).
	deps := []float64{0, 300, 600, 900}
	got := MeanHeadway(deps)
	if got != 300 {
		t.Fatalf("expected 300, got %v", got)
	}
}

func TestMeanHeadwayRoundsAndFloors(t *testing.T) {
	// deltas of 1,2,3s plus a huge wraparound -> low median 2s -> rounds to 0 -> floored to 10.
	deps := []float64{0, 1, 3, 6}
	got := MeanHeadway(deps)
	if got != minHeadway {
		t.Fatalf("expected floor of %v, got %v", minHeadway, got)
	}
}

func TestMeanHeadwayEmpty(t *testing.T) {
	if got := MeanHeadway(nil); got != 0 {
		t.Fatalf("expected 0 for empty dump, got %v", got)
	}
}

func TestLoadBytesAndLookup(t *testing.T) {
	data := []byte(`{"r1": [0, 360, 720], "r2": [0, 900]}`)
	fs, err := LoadBytes(data, func(id string) (string, bool) {
		if id == "r1" {
			return "Red Line", true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, ok := fs.Lookup("Red Line")
	if !ok || h != 360 {
		t.Fatalf("expected Red Line headway 360, got %v ok=%v", h, ok)
	}
	h2, ok2 := fs.Lookup("r2")
	if !ok2 || h2 != 900 {
		t.Fatalf("expected r2 headway 900, got %v ok=%v", h2, ok2)
	}
}

func TestEmptyStoreDegradesSilently(t *testing.T) {
	fs := Empty()
	if _, ok := fs.Lookup("anything"); ok {
		t.Fatal("expected empty store to report not-found")
	}
}

func TestDefaultModeHeadway(t *testing.T) {
	if got := DefaultModeHeadway("train_high_speed"); got != 600 {
		t.Fatalf("expected 600, got %v", got)
	}
	if got := DefaultModeHeadway("train_normal"); got != 300 {
		t.Fatalf("expected 300 default for unlisted mode, got %v", got)
	}
}
