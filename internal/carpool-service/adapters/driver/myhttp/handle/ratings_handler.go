package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	"carpool/internal/carpool-service/core/domain/dto"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

type RatingsHandler struct {
	ratingsService ports.IRatingsService
	log            mylogger.Logger
}

func NewRatingsHandler(rs ports.IRatingsService, log mylogger.Logger) *RatingsHandler {
	return &RatingsHandler{
		ratingsService: rs,
		log:            log,
	}
}

func (rh *RatingsHandler) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		offerID := mux.Vars(r)["offer_id"]

		req := dto.SubmitRatingRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonErrorStatus(w, http.StatusBadRequest, err)
			return
		}

		rating, err := rh.ratingsService.Submit(r.Context(), actor, offerID, req)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, rating)
	}
}
