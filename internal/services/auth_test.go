package services

import (
	"testing"

	"employment-api/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	return db
}

func registrationFixture(email, username string) RegistrationRequest {
	return RegistrationRequest{
		Email:        email,
		Username:     username,
		Password:     "s3cretpass",
		DateOfBirth:  "1990-05-01",
		EmployeeName: "Test Person",
		PhoneNumber:  "555-0100",
		Role:         models.RoleTextEmployee,
	}
}

func TestRegisterUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	user, err := svc.RegisterUser(db, registrationFixture("alice@example.com", "alice"))
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.FirstEmployeeID, user.EmployeeID)
	assert.Equal(t, models.RoleEmployee, user.UserRole)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash, "password must be stored hashed")
	require.NotNil(t, user.DateOfBirth)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	_, err := svc.RegisterUser(db, registrationFixture("alice@example.com", "alice"))
	require.NoError(t, err)

	_, err = svc.RegisterUser(db, registrationFixture("alice@example.com", "alice2"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterUser_SequentialEmployeeIDs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	first, err := svc.RegisterUser(db, registrationFixture("a@example.com", "a"))
	require.NoError(t, err)
	second, err := svc.RegisterUser(db, registrationFixture("b@example.com", "b"))
	require.NoError(t, err)
	third, err := svc.RegisterUser(db, registrationFixture("c@example.com", "c"))
	require.NoError(t, err)

	assert.Equal(t, models.FirstEmployeeID, first.EmployeeID)
	assert.Equal(t, models.FirstEmployeeID+1, second.EmployeeID)
	assert.Equal(t, models.FirstEmployeeID+2, third.EmployeeID)
}

func TestRegisterUser_RoleMapping(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	req := registrationFixture("boss@example.com", "boss")
	req.Role = models.RoleTextAdmin

	user, err := svc.RegisterUser(db, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.UserRole)

	req = registrationFixture("other@example.com", "other")
	req.Role = "something-unknown"

	user, err = svc.RegisterUser(db, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, user.UserRole)
}

func TestRegisterUser_InvalidDateOfBirth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	req := registrationFixture("alice@example.com", "alice")
	req.DateOfBirth = "not-a-date"

	_, err := svc.RegisterUser(db, req)
	assert.Error(t, err)
}

func TestLoginUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	_, err := svc.RegisterUser(db, registrationFixture("alice@example.com", "alice"))
	require.NoError(t, err)

	user, err := svc.LoginUser(db, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	_, err := svc.RegisterUser(db, registrationFixture("alice@example.com", "alice"))
	require.NoError(t, err)

	_, err = svc.LoginUser(db, "alice", "wrongpass")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestLoginUser_UnknownUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(4)

	_, err := svc.LoginUser(db, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyPassword(t *testing.T) {
	svc := NewAuthService(4)

	digest, err := svc.HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(digest, "hunter22"))
	assert.False(t, VerifyPassword(digest, "hunter23"))
}
