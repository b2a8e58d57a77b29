package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"employment-api/backend/internal/middleware"
	"employment-api/backend/internal/models"
	"employment-api/backend/internal/services"
	"employment-api/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	userService services.UserService
	tokens      *services.TokenService
	jobs        *worker.JobQueue

	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
}

type AuthHandlerConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SecureCookies   bool
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, userService services.UserService,
	tokens *services.TokenService, jobs *worker.JobQueue, cfg AuthHandlerConfig) *AuthHandler {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = services.DefaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = services.DefaultRefreshTokenTTL
	}
	return &AuthHandler{
		db:            db,
		authService:   authService,
		userService:   userService,
		tokens:        tokens,
		jobs:          jobs,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		secureCookies: cfg.SecureCookies,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserOut is the public projection of a user record; the password hash
// never leaves the service layer.
type UserOut struct {
	ID         uint   `json:"id"`
	EmployeeID int    `json:"employee_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	UserRole   int    `json:"user_role"`
}

func NewUserOut(user *models.User) UserOut {
	return UserOut{
		ID:         user.ID,
		EmployeeID: user.EmployeeID,
		Email:      user.Email,
		FullName:   user.FullName,
		UserRole:   user.UserRole,
	}
}

// useTokenMode reports whether the client opted into body-delivered tokens
// via the X-Use-Token header (programmatic clients). Browsers get cookies.
func useTokenMode(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("X-Use-Token"), "true")
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	// Secure is off by default for local development; production config
	// turns it on.
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.authService.RegisterUser(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": services.ErrEmailTaken.Error()})
			return
		}
		log.Printf("registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	if err := h.jobs.Enqueue(worker.DefaultQueue, worker.JobTypeWelcomeEmail, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	}); err != nil {
		log.Printf("failed to enqueue welcome email for %s: %v", user.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User registered successfully.",
		"user":    NewUserOut(user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.authService.LoginUser(h.db, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrIncorrectPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		log.Printf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	accessToken, err := h.tokens.IssueAccess(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not issue token"})
		return
	}
	refreshToken, err := h.tokens.IssueRefresh(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not issue token"})
		return
	}

	if useTokenMode(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "User logged in successfully.",
			"id":            user.ID,
			"jwt":           accessToken,
			"refresh_token": refreshToken,
		})
		return
	}

	h.setAuthCookie(c, middleware.AccessCookieName, accessToken, int(h.accessTTL.Seconds()))
	h.setAuthCookie(c, middleware.RefreshCookieName, refreshToken, int(h.refreshTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged in successfully.",
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var tokenString string

	if useTokenMode(c) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no refresh token provided in body"})
			return
		}
		tokenString = req.RefreshToken
	} else {
		cookie, err := c.Cookie(middleware.RefreshCookieName)
		if err != nil || cookie == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "no refresh token cookie found"})
			return
		}
		tokenString = cookie
	}

	claims, ok := h.tokens.Verify(tokenString)
	if !ok || services.TokenType(claims) != services.TokenTypeRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid refresh token"})
		return
	}

	subject, ok := services.Subject(claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid refresh token"})
		return
	}

	accessToken, err := h.tokens.IssueAccess(subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not issue token"})
		return
	}

	if useTokenMode(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "Token refreshed",
			"access_token": accessToken,
		})
		return
	}

	h.setAuthCookie(c, middleware.AccessCookieName, accessToken, int(h.accessTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token refreshed"})
}

// Logout is stateless: no server-side session exists, so it only clears
// the browser cookies. Issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	if !useTokenMode(c) {
		h.setAuthCookie(c, middleware.AccessCookieName, "", -1)
		h.setAuthCookie(c, middleware.RefreshCookieName, "", -1)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully."})
}
