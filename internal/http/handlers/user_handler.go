// Account HTTP handlers.
//
// This file exposes REST endpoints for accounts and sessions:
//   - POST /auth/register          (create account)
//   - POST /auth/login             (credentials → token pair)
//   - POST /auth/refresh           (refresh token → new access token)
//   - GET  /me                     (current profile)
//   - PUT  /me                     (update profile)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-swap-backend/internal/auth"
	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/services"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	// Username is the unique handle (3–50 chars).
	Username string `json:"username" binding:"required,min=3,max=50" example:"thrift_anna"`
	// Email is the unique login address.
	Email string `json:"email" binding:"required,email" example:"anna@example.com"`
	// Password in plaintext; stored only as a bcrypt hash.
	Password string `json:"password" binding:"required,min=8,max=128" example:"correct horse battery"`
	// Gender is optional demographic info.
	Gender string `json:"gender" example:"female"`
}

// LoginRequest is the JSON payload for obtaining a token pair.
type LoginRequest struct {
	// Identifier is the account email or username.
	Identifier string `json:"identifier" binding:"required" example:"anna@example.com"`
	Password   string `json:"password"   binding:"required" example:"correct horse battery"`
}

// RefreshRequest is the JSON payload for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries the issued tokens alongside the account resource.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

// UpdateProfileRequest is the JSON payload for partial profile updates.
// Absent fields are left untouched; present-but-empty strings clear the field
// (except username, which must stay non-empty).
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" example:"thrift_anna"`
	City     *string `json:"city,omitempty"     example:"Athens"`
	Address  *string `json:"address,omitempty"  example:"Ermou 12"`
	Bio      *string `json:"bio,omitempty"      example:"Trading out my old wardrobe."`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Register a new account
// @Description Creates an account in pending status (awaiting admin approval). The first account on a fresh instance becomes an approved admin.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Username or email taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials (email or username) and returns an access/refresh token pair. Unapproved non-admin accounts are refused.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  handlers.TokenResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     403  {object}  handlers.ErrorResponse  "Account pending approval"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.userSvc.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		failService(c, err)
		return
	}

	access, refresh, err := h.issuer.IssuePair(u.ID, u.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue tokens")
		return
	}
	ok(c, http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh, User: u})
}

// Refresh godoc
// @ID          refresh
// @Summary     Refresh an access token
// @Description Exchanges a valid refresh token for a new access token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RefreshRequest  true  "Refresh payload"
//
// @Success     200  {object}  handlers.TokenResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid refresh token"
// @Router      /auth/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "refresh_token required")
		return
	}

	claims, err := h.issuer.Validate(req.RefreshToken, auth.TokenRefresh)
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid refresh token")
		return
	}

	access, err := h.issuer.IssueAccess(claims.UserID, claims.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue token")
		return
	}
	ok(c, http.StatusOK, TokenResponse{AccessToken: access})
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get the current user's profile
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /me [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	u, err := h.userSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update the current user's profile
// @Description Applies a partial update; absent fields are left unchanged.
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Profile changes"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Username taken"
// @Router      /me [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.userSvc.UpdateProfile(c.Request.Context(), userID(c), services.UpdateProfileInput{
		Username: req.Username,
		City:     req.City,
		Address:  req.Address,
		Bio:      req.Bio,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
