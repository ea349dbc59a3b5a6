package httpx

import (
	"encoding/json"
	"net/http"

	apperrors "bizbranches/pkg/errors"
)

// Fields is the variable part of the success envelope. WriteOK merges it
// with ok:true so every success body has the shape {ok: true, ...payload}.
type Fields map[string]any

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteOK(w http.ResponseWriter, statusCode int, payload Fields) error {
	body := Fields{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	return WriteJSON(w, statusCode, body)
}

// WriteError renders the uniform failure envelope {ok:false, error, details?}.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	body := Fields{
		"ok":    false,
		"error": appErr.Message,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	return WriteJSON(w, appErr.StatusCode(), body)
}
