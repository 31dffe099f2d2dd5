package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	// Log based on status code
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	message := appErr.Message
	if appErr.Status >= 500 {
		message = http.StatusText(http.StatusInternalServerError)
	}

	if r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    appErr.Code,
				"message": message,
				"fields":  appErr.Fields,
			},
		})
		return
	}

	if appErr.Code == errors.ErrCodeNotFound {
		redirectNotFound(w, r)
		return
	}
	http.Error(w, message, appErr.Status)
}
