package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"carpool/internal/carpool-service/adapters/driver/myhttp/middleware"
	"carpool/internal/carpool-service/core/ports"
	"carpool/internal/mylogger"
)

type NotificationsHandler struct {
	notificationsService ports.INotificationsService
	log                  mylogger.Logger
}

func NewNotificationsHandler(ns ports.INotificationsService, log mylogger.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		notificationsService: ns,
		log:                  log,
	}
}

func (nh *NotificationsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		audience := strings.ToUpper(r.URL.Query().Get("mode"))
		unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

		notifs, err := nh.notificationsService.List(r.Context(), actor, audience, unreadOnly)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, notifs)
	}
}

func (nh *NotificationsHandler) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}
		notificationID := mux.Vars(r)["notification_id"]

		if err := nh.notificationsService.MarkRead(r.Context(), actor, notificationID); err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"status": "read"})
	}
}

func (nh *NotificationsHandler) MarkAllRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		n, err := nh.notificationsService.MarkAllRead(r.Context(), actor)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]int64{"marked": n})
	}
}

func (nh *NotificationsHandler) UnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			JsonErrorStatus(w, http.StatusUnauthorized, errors.New("not authenticated"))
			return
		}

		n, err := nh.notificationsService.CountUnread(r.Context(), actor)
		if err != nil {
			JsonError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]int64{"unread": n})
	}
}
