package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/config"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
)

// AuthUseCase is the session lifecycle the handler drives
type AuthUseCase interface {
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
	Logout(ctx context.Context, input identity.LogoutInput) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*identity.UserInfo, error)
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      identity.UserInfo `json:"user"`
}

// MeResponse describes the signed-in user and the property they act on
type MeResponse struct {
	User     identity.UserInfo `json:"user"`
	Role     string            `json:"role,omitempty"`
	Property *PropertyResponse `json:"property,omitempty"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	auth   AuthUseCase
	cookie config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthUseCase, cookie config.CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultSessionCookie
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

// Login godoc
// @Summary      Log in
// @Description  Checks credentials, returns the token and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	h.Success(c, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the current session and clears the cookie
// @Tags         auth
// @Produce      json
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ac, ok := middleware.GetAuthContext(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthenticated)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:    ac.UserID,
		SessionID: ac.SessionID,
		ExpiresAt: ac.ExpiresAt,
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearSessionCookie(c)
	h.NoContent(c)
}

// Me godoc
// @Summary      Current user
// @Description  Returns the signed-in user with their property
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=MeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	ac, ok := middleware.GetAuthContext(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthenticated)
		return
	}
	user, err := h.auth.GetCurrentUser(c.Request.Context(), ac.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := MeResponse{User: *user}
	if ac.HasProperty() && ac.Property != nil {
		p := toPropertyResponse(ac.Property)
		resp.Property = &p
		resp.Role = string(ac.Role)
	}
	h.Success(c, resp)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookie.SameSite),
	})
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookie.SameSite),
	})
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
