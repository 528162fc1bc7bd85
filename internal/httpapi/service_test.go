package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antigravity/mtr-router/internal/cache"
	"github.com/antigravity/mtr-router/internal/freqstore"
	"github.com/antigravity/mtr-router/internal/mapstore"
	"github.com/antigravity/mtr-router/internal/nameresolver"
	"github.com/antigravity/mtr-router/internal/routing"
)

const directSnapshot = `{
  "stations": {
    "a": {"name": "A", "x": 0, "z": 0, "connections": []},
    "b": {"name": "B", "x": 0, "z": 0, "connections": []}
  },
  "routes": [
    {"id": "l1", "name": "L1", "type": "train_normal",
     "stations": [{"id": "a"}, {"id": "b"}], "durations": [120000]}
  ]
}`

func mustService(t *testing.T) *Service {
	t.Helper()
	ms, err := mapstore.LoadBytes([]byte(directSnapshot))
	if err != nil {
		t.Fatalf("unexpected snapshot load error: %v", err)
	}
	fs := freqstore.Empty()
	builder := routing.NewBuilder(ms, fs)
	resolver := nameresolver.New(ms, nil)
	return NewService(ms, fs, resolver, builder, cache.New(nil, 8))
}

func TestServiceRouteDirectScenario(t *testing.T) {
	svc := mustService(t)
	req := RouteRequest{Origin: "A", Destination: "B", RouteType: "theory"}

	it, err := svc.Route(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected route error: %v", err)
	}
	if it.TotalS != 120 || it.WaitingS != 0 {
		t.Fatalf("expected total=120 waiting=0, got %+v", it)
	}
}

func TestServiceRouteUnknownStation(t *testing.T) {
	svc := mustService(t)
	req := RouteRequest{Origin: "A", Destination: "Nowhere", RouteType: "theory"}

	if _, err := svc.Route(context.Background(), req); err == nil {
		t.Fatal("expected an unknown-station error")
	}
}

func TestServiceOnlyLinesWhitelistBansEverythingElse(t *testing.T) {
	ms, err := mapstore.LoadBytes([]byte(`{
	  "stations": {
	    "a": {"name": "A", "x": 0, "z": 0, "connections": []},
	    "b": {"name": "B", "x": 0, "z": 0, "connections": []}
	  },
	  "routes": [
	    {"id": "l1", "name": "L1", "type": "train_normal",
	     "stations": [{"id": "a"}, {"id": "b"}], "durations": [120000]},
	    {"id": "l2", "name": "L2", "type": "train_normal",
	     "stations": [{"id": "a"}, {"id": "b"}], "durations": [60000]}
	  ]
	}`))
	if err != nil {
		t.Fatalf("unexpected snapshot load error: %v", err)
	}
	fs := freqstore.Empty()
	builder := routing.NewBuilder(ms, fs)
	resolver := nameresolver.New(ms, nil)
	svc := NewService(ms, fs, resolver, builder, cache.New(nil, 8))

	req := RouteRequest{Origin: "A", Destination: "B", RouteType: "theory", OnlyLines: []string{"L1"}}
	it, err := svc.Route(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected route error: %v", err)
	}
	if it.TotalS != 120 {
		t.Fatalf("expected only L1 (120s) to survive the whitelist, got total=%v", it.TotalS)
	}
}

func TestServeRouteEndToEnd(t *testing.T) {
	svc := mustService(t)
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/route?origin=A&destination=B&route_type=theory", nil)
	rec := httptest.NewRecorder()
	h.ServeRoute(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServeRouteMissingOriginIsBadRequest(t *testing.T) {
	svc := mustService(t)
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/route?destination=B", nil)
	rec := httptest.NewRecorder()
	h.ServeRoute(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServeRouteUnknownStationIsUnprocessable(t *testing.T) {
	svc := mustService(t)
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/route?origin=A&destination=Nowhere", nil)
	rec := httptest.NewRecorder()
	h.ServeRoute(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServeHealth(t *testing.T) {
	svc := mustService(t)
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
