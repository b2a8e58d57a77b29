package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"employment-api/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user does not exist")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type RegistrationRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required,min=3,max=50"`
	Password     string `json:"password" binding:"required,min=8"`
	DateOfBirth  string `json:"date_of_birth"`
	EmployeeName string `json:"employee_name" binding:"required"`
	PhoneNumber  string `json:"phone_number"`
	Role         string `json:"role"`
}

type AuthService interface {
	RegisterUser(db *gorm.DB, req RegistrationRequest) (*models.User, error)
	LoginUser(db *gorm.DB, username, password string) (*models.User, error)
}

type AuthServiceImpl struct {
	bcryptCost int
}

func NewAuthService(bcryptCost int) *AuthServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{bcryptCost: bcryptCost}
}

// HashPassword produces a salted bcrypt digest; the salt is embedded in
// the output.
func (s *AuthServiceImpl) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares a plaintext password against a stored digest.
// The comparison is constant-time inside bcrypt.
func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

const employeeIDRetries = 3

func (s *AuthServiceImpl) RegisterUser(db *gorm.DB, req RegistrationRequest) (*models.User, error) {
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth: %w", err)
		}
		dob = &parsed
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		FullName:     req.EmployeeName,
		DateOfBirth:  dob,
		PhoneNumber:  req.PhoneNumber,
		UserRole:     models.RoleFromText(req.Role),
		IsActive:     true,
	}

	// Employee ids are assigned as max+1 inside a transaction. Concurrent
	// registrations can still pick the same value, so the unique index on
	// employee_id is the arbiter and losers retry with a fresh max.
	var lastErr error
	for attempt := 0; attempt < employeeIDRetries; attempt++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			employeeID, err := nextEmployeeID(tx)
			if err != nil {
				return err
			}
			user.ID = 0
			user.EmployeeID = employeeID
			return tx.Create(&user).Error
		})
		if err == nil {
			return &user, nil
		}
		lastErr = err
		if !isUniqueViolation(err) {
			break
		}
	}
	return nil, fmt.Errorf("registering user: %w", lastErr)
}

func nextEmployeeID(tx *gorm.DB) (int, error) {
	var maxID *int
	if err := tx.Model(&models.User{}).Select("MAX(employee_id)").Scan(&maxID).Error; err != nil {
		return 0, err
	}
	if maxID == nil {
		return models.FirstEmployeeID, nil
	}
	return *maxID + 1, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrIncorrectPassword
	}
	return &user, nil
}
