package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/myerrors"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

type RequestsHandler struct {
	requestsService ports.IRequestsService
	log             mylogger.Logger
}

func NewRequestsHandler(rs ports.IRequestsService, log mylogger.Logger) *RequestsHandler {
	return &RequestsHandler{
		requestsService: rs,
		log:             log,
	}
}

func (rh *RequestsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		req := dto.CreateRequestRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonErrorStatus(w, http.StatusBadRequest, err)
			return
		}

		created, err := rh.requestsService.Create(r.Context(), actor, req)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, created)
	}
}

func (rh *RequestsHandler) Accept() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		requestID := mux.Vars(r)["request_id"]

		req, err := rh.requestsService.Accept(r.Context(), actor, requestID)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, req)
	}
}

func (rh *RequestsHandler) Reject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		requestID := mux.Vars(r)["request_id"]

		req, err := rh.requestsService.Reject(r.Context(), actor, requestID)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, req)
	}
}

// List serves both sides of the marketplace: ?driver=me returns requests
// against the caller's offers, ?passenger=me returns the caller's own.
func (rh *RequestsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		switch {
		case r.URL.Query().Get("driver") == "me":
			reqs, err := rh.requestsService.ListForDriver(r.Context(), actor.ID)
			if err != nil {
				JsonError(w, err)
				return
			}
			jsonResponse(w, http.StatusOK, reqs)
		case r.URL.Query().Get("passenger") == "me":
			reqs, err := rh.requestsService.ListForPassenger(r.Context(), actor.ID)
			if err != nil {
				JsonError(w, err)
				return
			}
			jsonResponse(w, http.StatusOK, reqs)
		default:
			JsonError(w, myerrors.Validationf("query must set driver=me or passenger=me"))
		}
	}
}
