package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/berkay/portfolio-api/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new admin Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"admin123"`
}

type loginData struct {
	Token    string `json:"token" example:"eyJhbGci..."`
	Username string `json:"username" example:"admin"`
}

type changePasswordRequest struct {
	Username    string `json:"username"    example:"admin"`
	NewPassword string `json:"newPassword" example:"s3cret!"`
}

type changeUsernameRequest struct {
	OldUsername string `json:"oldUsername" example:"admin"`
	NewUsername string `json:"newUsername" example:"berkay"`
}

// Login godoc
//
//	@Summary		Admin login
//	@Description	Verify admin credentials and issue a bearer token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=loginData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid credentials")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, loginData{Token: token, Username: req.Username})
}

// ChangePassword godoc
//
//	@Summary		Change admin password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		changePasswordRequest	true	"New password"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.NewPassword == "" {
		response.BadRequest(w, "username and newPassword are required")
		return
	}

	err := h.svc.ChangePassword(r.Context(), req.Username, req.NewPassword)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "admin not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "password changed successfully"})
}

// ChangeUsername godoc
//
//	@Summary		Change admin username
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		changeUsernameRequest	true	"Old and new username"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/change-username [post]
func (h *Handler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var req changeUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.OldUsername == "" || req.NewUsername == "" {
		response.BadRequest(w, "oldUsername and newUsername are required")
		return
	}

	err := h.svc.ChangeUsername(r.Context(), req.OldUsername, req.NewUsername)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "admin not found")
	case errors.Is(err, ErrUsernameTaken):
		response.Conflict(w, "username already exists")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, map[string]string{"message": "username changed successfully"})
	}
}
