package routing

import (
	"context"
	"testing"

	"github.com/antigravity/mtr-router/internal/freqstore"
	"github.com/antigravity/mtr-router/internal/models"
)

func TestFormatMergesParallelLinesIntoOneStep(t *testing.T) {
	ms := mustLoadMap(t, parallelSnapshot)
	fs := mustLoadFreq(t, `{"L1": [0, 360, 720, 1080], "L2": [0, 180, 360, 540]}`)
	b := NewBuilder(ms, fs)
	g, err := b.Build(context.Background(), models.NewFilterSet())
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	router := NewRouter()
	path, _, err := router.ShortestPath(context.Background(), g, "a", "b")
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}

	formatter := NewItineraryFormatter(ms)
	itin, err := formatter.Format(g, path)
	if err != nil {
		t.Fatalf("unexpected format error: %v", err)
	}
	if len(itin.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(itin.Legs))
	}
	leg := itin.Legs[0]
	if len(leg.Labels) != 2 || leg.Labels[0] != "L1" || leg.Labels[1] != "L2" {
		t.Fatalf("expected both lines listed on the step, got %v", leg.Labels)
	}
	if leg.Polyline == "" {
		t.Fatal("expected leg geometry to be encoded")
	}
	if itin.TotalS != 180 || itin.InVehicleS != 120 || itin.WaitingS != 60 {
		t.Fatalf("unexpected itinerary totals: %+v", itin)
	}
}

func TestFormatTransferScenarioTotals(t *testing.T) {
	ms := mustLoadMap(t, transferSnapshot)
	fs := mustLoadFreq(t, `{"L1": [0, 360, 720, 1080], "L2": [0, 360, 720, 1080]}`)
	b := NewBuilder(ms, fs)
	g, err := b.Build(context.Background(), models.NewFilterSet())
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	router := NewRouter()
	path, _, err := router.ShortestPath(context.Background(), g, "a", "b")
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}

	formatter := NewItineraryFormatter(ms)
	itin, err := formatter.Format(g, path)
	if err != nil {
		t.Fatalf("unexpected format error: %v", err)
	}
	if len(itin.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(itin.Legs))
	}
	if itin.TotalS != 480 {
		t.Fatalf("expected total 480, got %v", itin.TotalS)
	}
	if itin.InVehicleS != 120 || itin.WaitingS != 360 {
		t.Fatalf("expected in-vehicle 120 / waiting 360, got %+v", itin)
	}
}

func TestFormatRejectsTooShortPath(t *testing.T) {
	ms := mustLoadMap(t, directSnapshot)
	formatter := NewItineraryFormatter(ms)
	b := NewBuilder(ms, freqstore.Empty())
	g, err := b.Build(context.Background(), models.NewFilterSet())
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if _, err := formatter.Format(g, []string{"a"}); err == nil {
		t.Fatal("expected an error for a single-station path")
	}
}
