package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/antigravity/mtr-router/internal/routingerr"
)

// Handler adapts a Service to net/http.
type Handler struct {
	Service *Service
}

// NewHandler wraps svc for mounting on a router.
func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// ServeRoute implements GET /api/v1/route.
func (h *Handler) ServeRoute(w http.ResponseWriter, r *http.Request) {
	req, err := parseRouteRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	itinerary, err := h.Service.Route(r.Context(), req)
	if err != nil {
		if routingerr.Is(err, routingerr.KindCancelled) {
			// client disconnected; nothing to write back (§7: "Cancelled: silent")
			return
		}
		writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itinerary)
}

type healthBody struct {
	Status          string `json:"status"`
	Stations        int    `json:"stations"`
	Routes          int    `json:"routes"`
	MapVersion      string `json:"map_version"`
	GraphCacheState string `json:"graph_cache"`
}

// ServeHealth implements GET /api/v1/health, reporting snapshot load
// status (addition, teacher's own `/health` db-ping pattern extended to
// this core's two snapshots and the graph cache).
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:          "ok",
		Stations:        len(h.Service.Store.Stations()),
		Routes:          len(h.Service.Store.Routes()),
		MapVersion:      h.Service.Store.Version(),
		GraphCacheState: "in_process_only",
	}
	if h.Service.Cache != nil {
		body.GraphCacheState = "connected"
		if err := h.Service.Cache.Ping(r.Context()); err != nil {
			body.Status = "degraded"
			body.GraphCacheState = "unreachable"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// writeRoutingError maps a routingerr.Kind to the HTTP status §7 implies
// for it and writes a structured error body.
func writeRoutingError(w http.ResponseWriter, err error) {
	kind, ok := routingerr.KindOf(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	switch kind {
	case routingerr.KindUnknownStation, routingerr.KindSameStation:
		writeError(w, http.StatusUnprocessableEntity, string(kind), err.Error())
	case routingerr.KindNoPath:
		writeError(w, http.StatusNotFound, string(kind), err.Error())
	case routingerr.KindInvalidSnapshot:
		writeError(w, http.StatusServiceUnavailable, string(kind), err.Error())
	case routingerr.KindInternalInvariant:
		writeError(w, http.StatusInternalServerError, string(kind), err.Error())
	default:
		writeError(w, http.StatusInternalServerError, string(kind), err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Kind: kind, Message: message}})
}
