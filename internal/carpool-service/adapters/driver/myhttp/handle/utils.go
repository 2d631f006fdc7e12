package handle

import (
	"encoding/json"
	"net/http"

	"carpool/internal/carpool-service/core/myerrors"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// JsonError maps the error kind onto an HTTP status and writes the
// standard failure envelope.
func JsonError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(myerrors.HTTPStatus(err))
	json.NewEncoder(w).Encode(envelope{Success: false, Error: err.Error()})
}

func JsonErrorStatus(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: err.Error()})
}
