package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taxitrack/internal/general/jwt"
)

type driverView struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	CarModel string `json:"car_model"`
	CarPlate string `json:"car_plate"`
}

type activeRideResponse struct {
	rideView
	Driver *driverView `json:"driver,omitempty"`
}

// ----- Handler: GET /api/client/rides/active -----

func (handler *ClientHTTPHandler) handleActiveRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	view, err := handler.svc.ActiveRide(ctxWithTimeout, strings.TrimSpace(claims.Subject))
	if err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}
	if view == nil {
		handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "no active ride", nil)
		return
	}

	res := activeRideResponse{rideView: toRideView(view.Ride)}
	if view.Driver != nil {
		res.Driver = &driverView{
			Name:     view.Driver.Name,
			Phone:    view.Driver.Phone,
			CarModel: view.Driver.CarModel,
			CarPlate: view.Driver.CarPlate,
		}
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
