// Package service holds the application use cases on top of the repositories.
package service

import (
	"agora/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new hashes.
var PasswordCost = bcrypt.DefaultCost

// HashPassword hashes a plain-text password with PasswordCost.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// ensureOwnerOrAdmin allows the owner of a resource and administrators.
func ensureOwnerOrAdmin(ownerID uint, actor *models.User, message string) error {
	if actor.ID == ownerID || actor.IsAdmin() {
		return nil
	}
	return models.NewForbiddenError(message)
}

func ensureAdmin(actor *models.User) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Administrator role required")
	}
	return nil
}
