package symptomapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/linnemanlabs/carepath/internal/facility"
)

type nearbyRequest struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Radius *int     `json:"radius"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type nearbyResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Places  []facility.Place `json:"places"`
	Center  center           `json:"center"`
}

type searchResponse struct {
	Success bool                `json:"success"`
	Results []facility.Location `json:"results"`
}

const missingCoordinates = "Missing required parameters: lat and lon"

func (a *API) handleNearby(w http.ResponseWriter, r *http.Request) {
	var req nearbyRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.writeError(w, r, http.StatusBadRequest, "No JSON data provided")
			return
		}
	} else {
		q := r.URL.Query()
		if lat, err := strconv.ParseFloat(q.Get("lat"), 64); err == nil {
			req.Lat = &lat
		}
		if lon, err := strconv.ParseFloat(q.Get("lon"), 64); err == nil {
			req.Lon = &lon
		}
		if s := q.Get("radius"); s != "" {
			radius, err := strconv.Atoi(s)
			if err != nil {
				a.writeError(w, r, http.StatusBadRequest, "Radius must be an integer number of meters")
				return
			}
			req.Radius = &radius
		}
	}

	if req.Lat == nil || req.Lon == nil {
		a.writeError(w, r, http.StatusBadRequest, missingCoordinates)
		return
	}

	// default only when absent; an explicit 0 is rejected as out of range
	radius := facility.DefaultRadius
	if req.Radius != nil {
		radius = *req.Radius
	}

	places, err := a.facilities.Nearby(r.Context(), *req.Lat, *req.Lon, radius)
	if err != nil {
		a.facilityError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, nearbyResponse{
		Success: true,
		Count:   len(places),
		Places:  places,
		Center:  center{Lat: *req.Lat, Lon: *req.Lon},
	})
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	locs, err := a.facilities.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		a.facilityError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, searchResponse{Success: true, Results: locs})
}

func (a *API) facilityError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *facility.InputError
	if errors.As(err, &ie) {
		a.writeError(w, r, http.StatusBadRequest, ie.Message)
		return
	}

	a.logger.Error(r.Context(), err, "facility lookup failed")
	var ue *facility.UpstreamError
	if errors.As(err, &ue) {
		a.writeError(w, r, http.StatusBadGateway, "Facility lookup failed: map service unavailable")
		return
	}
	a.writeError(w, r, http.StatusInternalServerError, "Facility lookup failed")
}
