package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"validation", FieldError("email", "bad"), http.StatusBadRequest},
		{"authentication", &AuthenticationError{Message: "nope"}, http.StatusUnauthorized},
		{"not authenticated", &NotAuthenticatedError{Detail: "Invalid token."}, http.StatusUnauthorized},
		{"authorization", &AuthorizationError{Message: "denied"}, http.StatusForbidden},
		{"conflict", ErrConflict, http.StatusConflict},
		{"pg unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatusFromError(tc.err))
		})
	}
}

func TestValidationErrorCollectsMessages(t *testing.T) {
	verr := NewValidationError()
	require.NoError(t, verr.OrNil())

	pincode := regexp.MustCompile(`^\d{5,10}$`)
	require.True(t, verr.Check("address.pincode", "12345", validation.Match(pincode)))
	require.False(t, verr.Check("address.pincode", "1234", validation.Match(pincode).Error("Pincode must be 5-10 digits")))
	require.False(t, verr.Check("first_name", "", validation.Required.Error("This field is required.")))
	verr.Add("password", "one")
	verr.Add("password", "two")

	require.True(t, verr.Has("password"))
	require.Equal(t, []string{"Pincode must be 5-10 digits"}, verr.Fields["address.pincode"])
	require.Equal(t, []string{"one", "two"}, verr.Fields["password"])
	require.ErrorIs(t, verr.OrNil(), ErrValidation)
	require.Equal(t,
		"validation failed: address.pincode: Pincode must be 5-10 digits; first_name: This field is required.; password: one two",
		verr.Error())
}

func TestRespondWithServiceError(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		code := RespondWithServiceError(rec, FieldError("email", "A user with this email already exists."))

		require.Equal(t, http.StatusBadRequest, code)
		var body map[string][]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, []string{"A user with this email already exists."}, body["email"])
	})

	t.Run("credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		code := RespondWithServiceError(rec, &AuthenticationError{Message: "Invalid username or password."})

		require.Equal(t, http.StatusBadRequest, code)
		require.JSONEq(t, `{"non_field_errors":["Invalid username or password."]}`, rec.Body.String())
	})

	t.Run("not authenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		code := RespondWithServiceError(rec, &NotAuthenticatedError{Detail: "Invalid token."})

		require.Equal(t, http.StatusUnauthorized, code)
		require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		require.JSONEq(t, `{"detail":"Invalid token."}`, rec.Body.String())
	})

	t.Run("forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		code := RespondWithServiceError(rec, &AuthorizationError{
			Message: "Access denied. Doctor access required.", CurrentRole: "patient", Username: "jane",
		})

		require.Equal(t, http.StatusForbidden, code)
		require.JSONEq(t,
			`{"error":"Access denied. Doctor access required.","current_user_type":"patient","username":"jane"}`,
			rec.Body.String())
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		code := RespondWithServiceError(rec, errors.New("pq: connection refused to 10.0.0.3"))

		require.Equal(t, http.StatusInternalServerError, code)
		require.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	})
}
