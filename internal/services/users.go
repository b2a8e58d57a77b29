package services

import (
	"errors"

	"employment-api/backend/internal/models"

	"gorm.io/gorm"
)

type UserService interface {
	GetUserByEmail(db *gorm.DB, email string) (*models.User, error)
	GetEmployees(db *gorm.DB) ([]models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) GetEmployees(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	result := db.Where("user_role = ?", models.RoleEmployee).Find(&users)
	return users, result.Error
}
