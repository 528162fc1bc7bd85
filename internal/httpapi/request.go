package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

var validate = validator.New()

// RouteRequest is the decoded and validated form of §6.4's routing
// request contract.
type RouteRequest struct {
	Origin      string `schema:"origin" validate:"required"`
	Destination string `schema:"destination" validate:"required"`
	RouteType   string `schema:"route_type" validate:"omitempty,oneof=theory waiting"`

	BannedLines    []string `schema:"banned_lines"`
	BannedStations []string `schema:"banned_stations"`
	OnlyLines      []string `schema:"only_lines"`

	BanHighSpeed         bool `schema:"ban_high_speed"`
	BanBoat              bool `schema:"ban_boat"`
	OnlyLRT              bool `schema:"only_lrt"`
	CalculateWalkingWild bool `schema:"calculate_walking_wild"`

	Detail bool `schema:"detail"`
}

// parseRouteRequest decodes req's query string into a RouteRequest and
// validates it.
func parseRouteRequest(r *http.Request) (RouteRequest, error) {
	if err := r.ParseForm(); err != nil {
		return RouteRequest{}, err
	}

	var req RouteRequest
	if err := queryDecoder.Decode(&req, r.Form); err != nil {
		return RouteRequest{}, err
	}
	if req.RouteType == "" {
		req.RouteType = "waiting"
	}

	if err := validate.Struct(req); err != nil {
		return RouteRequest{}, err
	}
	return req, nil
}
