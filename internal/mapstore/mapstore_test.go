package mapstore

import (
	"testing"

	"github.com/antigravity/mtr-router/internal/routingerr"
)

const sampleSnapshot = `{
  "stations": {
    "a": {"name": "Alpha", "connections": ["b"]},
    "b": {"name": "Bravo"},
    "c": {"name": "Charlie"}
  },
  "routes": [
    {
      "id": "r1",
      "name": "Red Line",
      "number": "1",
      "color": "#FF0000",
      "type": "train_normal",
      "circularState": "none",
      "stations": [
        {"id": "a", "x": 0, "z": 0},
        {"id": "b", "x": 100, "z": 0}
      ],
      "durations": [12000]
    }
  ]
}`

func TestLoadBytesBasic(t *testing.T) {
	ms, err := LoadBytes([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.Stations()) != 3 {
		t.Fatalf("expected 3 stations, got %d", len(ms.Stations()))
	}
	a, ok := ms.StationByID("a")
	if !ok || !a.Routable {
		t.Fatalf("station a should be routable: %+v", a)
	}
	c, ok := ms.StationByID("c")
	if !ok || c.Routable {
		t.Fatalf("station c has no coordinates and must not be routable: %+v", c)
	}
	r1, ok := ms.RouteByID("r1")
	if !ok {
		t.Fatal("expected route r1")
	}
	if len(r1.Durations) != 1 || r1.Durations[0] != 12 {
		t.Fatalf("expected durations [12]s after ms->s conversion, got %v", r1.Durations)
	}
	if r1.Colour != 0xFF0000 {
		t.Fatalf("expected colour 0xFF0000, got %x", r1.Colour)
	}
}

func TestLoadBytesLegacyArrayWrapper(t *testing.T) {
	wrapped := "[" + sampleSnapshot + "]"
	ms, err := LoadBytes([]byte(wrapped))
	if err != nil {
		t.Fatalf("unexpected error decoding legacy wrapper: %v", err)
	}
	if len(ms.Routes()) != 1 {
		t.Fatalf("expected 1 route, got %d", len(ms.Routes()))
	}
}

func TestLoadBytesMissingStations(t *testing.T) {
	_, err := LoadBytes([]byte(`{"routes": []}`))
	if !routingerr.Is(err, routingerr.KindInvalidSnapshot) {
		t.Fatalf("expected InvalidSnapshot, got %v", err)
	}
}

func TestLoadBytesUnknownStationReference(t *testing.T) {
	bad := `{
		"stations": {"a": {"name": "Alpha", "x": 0, "z": 0}},
		"routes": [{"id": "r1", "type": "train_normal", "stations": [{"id": "a"}, {"id": "ghost"}], "durations": [1000]}]
	}`
	_, err := LoadBytes([]byte(bad))
	if !routingerr.Is(err, routingerr.KindInvalidSnapshot) {
		t.Fatalf("expected InvalidSnapshot for unknown station reference, got %v", err)
	}
}

func TestHexIDStableEnumerationOrder(t *testing.T) {
	ms, err := LoadBytes([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := ms.StationByID("a")
	b, _ := ms.StationByID("b")
	c, _ := ms.StationByID("c")
	if a.ShortID != "0" || b.ShortID != "1" || c.ShortID != "2" {
		t.Fatalf("expected hex ids 0,1,2 by sorted-id enumeration, got %s,%s,%s", a.ShortID, b.ShortID, c.ShortID)
	}
}
