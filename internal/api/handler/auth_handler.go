package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"medportal/internal/app/service"
	"medportal/internal/common"
	"medportal/internal/domain/model"
	"medportal/internal/platform/storage"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Room for the form fields next to the largest accepted picture.
const maxSignupBody = storage.MaxImageBytes + 1<<20

type AuthHandler struct {
	authService *service.AuthService
	log         logrus.FieldLogger
}

func NewAuthHandler(authService *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
}

type signupResponse struct {
	Message  string                `json:"message"`
	User     *model.UserProjection `json:"user"`
	Token    string                `json:"token"`
	UserType model.Role            `json:"user_type"`
}

type loginResponse struct {
	Message     string                `json:"message"`
	User        *model.UserProjection `json:"user"`
	Token       string                `json:"token"`
	UserType    model.Role            `json:"user_type"`
	RedirectURL string                `json:"redirect_url"`
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSignupBody)

	var req service.SignupRequest
	var err error
	switch mediaType(r) {
	case "multipart/form-data":
		req, err = signupFromMultipart(r)
	case "application/x-www-form-urlencoded":
		req, err = signupFromForm(r)
	default:
		err = decodeJSON(r, &req)
	}
	if err != nil {
		common.RespondWithDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, signupResponse{
		Message:  "User registered successfully",
		User:     res.User,
		Token:    res.Token,
		UserType: res.Account.Role,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	switch mediaType(r) {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	default:
		if err := decodeJSON(r, &req); err != nil {
			common.RespondWithDetail(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, loginResponse{
		Message:     "Login successful",
		User:        res.User,
		Token:       res.Token,
		UserType:    res.Account.Role,
		RedirectURL: res.RedirectURL,
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("JSON parse error - %v", err)
	}
	return nil
}

func signupFromForm(r *http.Request) (service.SignupRequest, error) {
	if err := r.ParseForm(); err != nil {
		return service.SignupRequest{}, fmt.Errorf("Form parse error - %v", err)
	}
	return signupFields(r), nil
}

func signupFromMultipart(r *http.Request) (service.SignupRequest, error) {
	if err := r.ParseMultipartForm(maxSignupBody); err != nil {
		return service.SignupRequest{}, fmt.Errorf("Multipart form parse error - %v", err)
	}
	req := signupFields(r)

	file, header, err := r.FormFile("profile_picture")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("Multipart form parse error - %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageBytes+1))
	if err != nil {
		return req, fmt.Errorf("reading profile_picture: %v", err)
	}
	if len(data) > 0 {
		req.ProfilePicture = &service.ProfilePictureUpload{Filename: header.Filename, Data: data}
	}
	return req, nil
}

// signupFields reads flat form keys; the address is sent as "address.line1" and so on.
func signupFields(r *http.Request) service.SignupRequest {
	req := service.SignupRequest{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		UserType:        r.FormValue("user_type"),
	}

	addr := service.AddressInput{
		Line1:   r.FormValue("address.line1"),
		City:    r.FormValue("address.city"),
		State:   r.FormValue("address.state"),
		Pincode: r.FormValue("address.pincode"),
	}
	if strings.TrimSpace(addr.Line1+addr.City+addr.State+addr.Pincode) != "" {
		req.Address = &addr
	}
	return req
}
