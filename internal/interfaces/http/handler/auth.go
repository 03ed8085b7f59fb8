package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// RefreshTokenCookie is the name of the HttpOnly cookie carrying the
// refresh token.
const RefreshTokenCookie = "refresh_token"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	jwtService  *auth.JWTService
	cookieCfg   config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, jwtService *auth.JWTService, cookieCfg config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		cookieCfg:   cookieCfg,
	}
}

// RegisterRoutes registers the auth endpoints
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.Login)
		group.POST("/refresh", h.RefreshToken)
		group.POST("/logout", h.Logout)
		group.GET("/me", h.Me)
		group.POST("/change-password", h.ChangePassword)
		group.POST("/forgotten-password", h.ForgottenPassword)
		group.POST("/reset-password", h.ResetPassword)
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Lastname: req.Lastname,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	h.Created(c, loginResponse(result))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	h.Success(c, loginResponse(result))
}

// RefreshToken handles POST /auth/refresh. The refresh token is read
// from the HttpOnly cookie, with a JSON body fallback for non-browser
// clients.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		h.Unauthorized(c, "Missing refresh token")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: refreshToken,
	})
	if err != nil {
		h.clearRefreshCookie(c)
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	h.Success(c, RefreshTokenResponse{
		Token: TokenResponse{
			AccessToken:          result.AccessToken,
			AccessTokenExpiresAt: result.AccessTokenExpiresAt,
			TokenType:            result.TokenType,
		},
	})
}

// Logout handles POST /auth/logout. The endpoint is reachable without
// authentication so a client holding only the refresh cookie can still
// end its session. Any presented access token and the refresh cookie
// are revoked, and the cookie is cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		if claims, err := h.jwtService.ValidateAccessToken(token); err == nil {
			_ = h.authService.Logout(ctx, identity.LogoutInput{
				TokenJTI: claims.ID,
				TokenTTL: claims.GetRemainingTTL(),
			})
		}
	}

	if refreshToken, _ := c.Cookie(RefreshTokenCookie); refreshToken != "" {
		if claims, err := h.jwtService.ValidateRefreshToken(refreshToken); err == nil {
			_ = h.authService.Logout(ctx, identity.LogoutInput{
				TokenJTI: claims.ID,
				TokenTTL: claims.GetRemainingTTL(),
			})
		}
	}

	h.clearRefreshCookie(c)
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	info, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AuthUserResponse{
		ID:       info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Lastname: info.Lastname,
	})
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{Message: "Password changed successfully"})
}

// ForgottenPassword handles POST /auth/forgotten-password. The response
// is identical whether or not the email exists.
func (h *AuthHandler) ForgottenPassword(c *gin.Context) {
	var req ForgottenPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	_, err := h.authService.CreateForgottenPassword(c.Request.Context(), identity.ForgottenPasswordInput{
		Email: req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{Message: "If the email exists, a reset link has been sent"})
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.authService.ResetForgottenPassword(c.Request.Context(), identity.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{Message: "Password has been reset"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(sameSiteMode(h.cookieCfg.SameSite))
	c.SetCookie(
		RefreshTokenCookie,
		token,
		int(h.jwtService.GetRefreshTokenExpiration().Seconds()),
		h.cookieCfg.Path,
		h.cookieCfg.Domain,
		h.cookieCfg.Secure,
		true,
	)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cookieCfg.SameSite))
	c.SetCookie(RefreshTokenCookie, "", -1, h.cookieCfg.Path, h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func sameSiteMode(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func loginResponse(result *identity.LoginResult) LoginResponse {
	return LoginResponse{
		Token: TokenResponse{
			AccessToken:          result.AccessToken,
			AccessTokenExpiresAt: result.AccessTokenExpiresAt,
			TokenType:            result.TokenType,
		},
		User: AuthUserResponse{
			ID:       result.User.ID,
			Email:    result.User.Email,
			Name:     result.User.Name,
			Lastname: result.User.Lastname,
		},
	}
}
