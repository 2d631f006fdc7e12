package handle

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

type RidesHandler struct {
	ridesService ports.IRideExecService
	log          mylogger.Logger
}

func NewRidesHandler(rs ports.IRideExecService, log mylogger.Logger) *RidesHandler {
	return &RidesHandler{
		ridesService: rs,
		log:          log,
	}
}

func (rh *RidesHandler) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		offerID := mux.Vars(r)["offer_id"]

		offer, err := rh.ridesService.Start(r.Context(), actor, offerID)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, offer)
	}
}

func (rh *RidesHandler) Pickup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		vars := mux.Vars(r)

		req, err := rh.ridesService.Pickup(r.Context(), actor, vars["offer_id"], vars["request_id"])
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, req)
	}
}

func (rh *RidesHandler) Complete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		offerID := mux.Vars(r)["offer_id"]

		offer, err := rh.ridesService.Complete(r.Context(), actor, offerID)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, offer)
	}
}
