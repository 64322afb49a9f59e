package main

import (
	"fmt"
	"strings"

	"fintrack/models"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps the unknown-username path doing a bcrypt comparison so its
// timing matches the wrong-password path.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fintrack-timing-pad"), bcrypt.DefaultCost)

// RegisterUser persists a new user with a bcrypt-hashed password.
func RegisterUser(username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return nil, fmt.Errorf("password too short (min 6)")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrDuplicateUser
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: username, Email: email, HashedPassword: hashedPassword}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown username and for a
// wrong password alike, so callers cannot probe which usernames exist.
func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}
