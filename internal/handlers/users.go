package handlers

import (
	"errors"
	"net/http"

	"employment-api/backend/internal/middleware"
	"employment-api/backend/internal/models"
	"employment-api/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	userService services.UserService
}

func NewUserHandler(db *gorm.DB, userService services.UserService) *UserHandler {
	return &UserHandler{db: db, userService: userService}
}

// currentUser resolves the authenticated subject to a user record. It
// writes the rejection response itself and returns false when resolution
// fails.
func (h *UserHandler) currentUser(c *gin.Context) (*models.User, bool) {
	return resolveCurrentUser(c, h.db, h.userService)
}

func resolveCurrentUser(c *gin.Context, db *gorm.DB, users services.UserService) (*models.User, bool) {
	email, ok := middleware.SubjectFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token payload: 'sub' not found"})
		return nil, false
	}

	user, err := users.GetUserByEmail(db, email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return nil, false
	}
	return user, true
}

// Protected is a sample authenticated route.
func (h *UserHandler) Protected(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	c.JSON(http.StatusOK, gin.H{"msg": "You are authenticated!", "user": claims})
}

func (h *UserHandler) GetUserRole(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User role retrieved successfully.",
		"role":    models.RoleText(user.UserRole),
	})
}

func (h *UserHandler) GetEmployees(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	employees, err := h.userService.GetEmployees(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	out := make([]UserOut, 0, len(employees))
	for i := range employees {
		out = append(out, NewUserOut(&employees[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Employees retrieved successfully.",
		"employee": out,
	})
}
