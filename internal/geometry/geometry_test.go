package geometry

import "testing"

func TestDistance(t *testing.T) {
	d := Distance(Point{0, 0}, Point{3, 4})
	if d != 5 {
		t.Fatalf("expected 5, got %v", d)
	}
}

func TestNominalTime(t *testing.T) {
	stops := []Point{{0, 0}, {14, 0}, {28, 0}}
	got := NominalTime("train_normal", stops)
	want := 2.0 // 28 blocks / 14 blocks-per-second
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNominalTimeUnknownMode(t *testing.T) {
	stops := []Point{{0, 0}, {14, 0}}
	if got := NominalTime("warp_drive", stops); got != 0 {
		t.Fatalf("expected 0 for unknown mode, got %v", got)
	}
}

func TestModeSpeedTable(t *testing.T) {
	cases := map[string]float64{
		"train_normal":     14,
		"train_light_rail": 11,
		"train_high_speed": 40,
		"boat_normal":      10,
		"boat_light_rail":  10,
		"boat_high_speed":  13,
		"cable_car_normal": 8,
		"airplane_normal":  70,
	}
	for mode, want := range cases {
		if got := ModeSpeed(mode); got != want {
			t.Errorf("ModeSpeed(%q) = %v, want %v", mode, got, want)
		}
	}
}
