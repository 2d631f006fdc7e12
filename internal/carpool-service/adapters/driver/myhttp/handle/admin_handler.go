package handle

import (
	"net/http"
	"strconv"

	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

type AdminHandler struct {
	adminService ports.IAdminService
	log          mylogger.Logger
}

func NewAdminHandler(as ports.IAdminService, log mylogger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: as,
		log:          log,
	}
}

func (ah *AdminHandler) Overview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := ah.adminService.Overview(r.Context())
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, overview)
	}
}

func (ah *AdminHandler) LiveRides() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		pageSize := queryInt(r, "page_size", 20)

		rides, err := ah.adminService.LiveRides(r.Context(), page, pageSize)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, rides)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
