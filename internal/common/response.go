package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// DetailResponse is the body for authentication failures and malformed requests.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ForbiddenResponse echoes the caller's role and username on a role mismatch.
type ForbiddenResponse struct {
	Error           string `json:"error"`
	CurrentUserType string `json:"current_user_type"`
	Username        string `json:"username"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

func RespondWithDetail(w http.ResponseWriter, code int, detail string) {
	RespondWithJSON(w, code, DetailResponse{Detail: detail})
}

func RespondWithFieldErrors(w http.ResponseWriter, code int, fields map[string][]string) {
	RespondWithJSON(w, code, fields)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithServiceError renders err in the body shape of its error type and returns the status written.
// Credential failures are reported as 400 non-field errors, the same way login validation failures are.
func RespondWithServiceError(w http.ResponseWriter, err error) int {
	var (
		validationErr *ValidationError
		authnErr      *AuthenticationError
		notAuthErr    *NotAuthenticatedError
		authzErr      *AuthorizationError
	)
	switch {
	case errors.As(err, &validationErr):
		RespondWithFieldErrors(w, http.StatusBadRequest, validationErr.Fields)
		return http.StatusBadRequest
	case errors.As(err, &authnErr):
		RespondWithFieldErrors(w, http.StatusBadRequest, map[string][]string{NonFieldErrors: {authnErr.Message}})
		return http.StatusBadRequest
	case errors.As(err, &notAuthErr):
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		RespondWithDetail(w, http.StatusUnauthorized, notAuthErr.Detail)
		return http.StatusUnauthorized
	case errors.As(err, &authzErr):
		RespondWithJSON(w, http.StatusForbidden, ForbiddenResponse{
			Error:           authzErr.Message,
			CurrentUserType: authzErr.CurrentRole,
			Username:        authzErr.Username,
		})
		return http.StatusForbidden
	}

	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		RespondWithError(w, code, ErrInternalServer.Error())
	} else {
		RespondWithError(w, code, err.Error())
	}
	return code
}
