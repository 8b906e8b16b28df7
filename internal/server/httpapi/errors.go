package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vaultshare/vaultshare/internal/api"
	"github.com/vaultshare/vaultshare/internal/common"
	"github.com/vaultshare/vaultshare/internal/phonex"
	"github.com/vaultshare/vaultshare/internal/server/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to the wire envelope. Unrecognized
// errors are reported as a plain 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {

	var ire *services.InvalidRecipientsError
	if errors.As(err, &ire) {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error:             api.ErrKindInvalidRecipients,
			InvalidRecipients: ire.Recipients,
		})
		return
	}

	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: api.ErrKindNotFound})
	case errors.Is(err, common.ErrShareForbidden):
		writeJSON(w, http.StatusForbidden, api.ErrorResponse{Error: api.ErrKindForbidden})
	case errors.Is(err, common.ErrShareExpired):
		writeJSON(w, http.StatusGone, api.ErrorResponse{Error: api.ErrKindExpired})
	case errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: api.ErrKindTokenExpired})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: api.ErrKindUnauthorized})
	case errors.Is(err, common.ErrEmailTaken),
		errors.Is(err, common.ErrNotConfirmed),
		errors.Is(err, common.ErrInvalidCode),
		errors.Is(err, common.ErrCodeExpired),
		errors.Is(err, common.ErrNoRecipients),
		errors.Is(err, common.ErrExpiryInPast),
		errors.Is(err, phonex.ErrInvalidPhone):
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}
