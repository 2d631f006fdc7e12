package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

type OffersHandler struct {
	offersService ports.IOffersService
	log           mylogger.Logger
}

func NewOffersHandler(os ports.IOffersService, log mylogger.Logger) *OffersHandler {
	return &OffersHandler{
		offersService: os,
		log:           log,
	}
}

func (oh *OffersHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		req := dto.CreateOfferRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonErrorStatus(w, http.StatusBadRequest, err)
			return
		}

		offer, err := oh.offersService.Create(r.Context(), actor, req)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, offer)
	}
}

func (oh *OffersHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		q := dto.ListOffersQuery{}
		if raw := r.URL.Query().Get("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				q.Statuses = append(q.Statuses, strings.ToUpper(strings.TrimSpace(s)))
			}
		}
		if r.URL.Query().Get("driver") == "me" {
			q.DriverID = actor.ID
		}

		offers, err := oh.offersService.List(r.Context(), q)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, offers)
	}
}

func (oh *OffersHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID := mux.Vars(r)["offer_id"]

		offer, err := oh.offersService.Get(r.Context(), offerID)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, offer)
	}
}

func (oh *OffersHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		offerID := mux.Vars(r)["offer_id"]

		patch := dto.UpdateOfferRequest{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			JsonErrorStatus(w, http.StatusBadRequest, err)
			return
		}

		offer, err := oh.offersService.Update(r.Context(), actor, offerID, patch)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, offer)
	}
}

func (oh *OffersHandler) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		offerID := mux.Vars(r)["offer_id"]

		offer, err := oh.offersService.Cancel(r.Context(), actor, offerID)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, offer)
	}
}
