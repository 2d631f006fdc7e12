package handle

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carpool/internal/carpool-service/core/myerrors"
)

func TestJsonErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{myerrors.Validationf("bad"), http.StatusBadRequest},
		{myerrors.Authorizationf("nope"), http.StatusForbidden},
		{myerrors.NotFoundf("gone"), http.StatusNotFound},
		{myerrors.Capacityf("full"), http.StatusConflict},
		{myerrors.Statef("wrong state"), http.StatusConflict},
		{myerrors.Timeoutf("slow"), http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		JsonError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v -> %d, want %d", tc.err, rec.Code, tc.want)
		}
		var body envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.Success || body.Error == "" {
			t.Fatalf("body = %+v, want failure envelope", body)
		}
	}
}

func TestJsonResponseEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonResponse(rec, http.StatusCreated, map[string]string{"id": "offer-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !body.Success {
		t.Fatalf("body = %+v, want success envelope", body)
	}
}
