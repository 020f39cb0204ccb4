// Package auth gates the admin dashboard surface: a single configured
// admin credential checked with bcrypt, and JWTs for the session that
// follows.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminAuthenticator verifies the configured admin credential. regdesk has
// exactly one admin identity (the event operations team); user accounts
// live upstream.
type AdminAuthenticator struct {
	email        string
	passwordHash string
}

// NewAdminAuthenticator creates an authenticator for the given email and
// bcrypt password hash.
func NewAdminAuthenticator(email, passwordHash string) *AdminAuthenticator {
	return &AdminAuthenticator{
		email:        email,
		passwordHash: passwordHash,
	}
}

// Authenticate verifies the email and password.
func (a *AdminAuthenticator) Authenticate(email, password string) error {
	if email != a.email || a.passwordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the bcrypt hash for a password, used by deployment
// tooling to produce the ADMIN_PASSWORD_HASH value.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
