package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/stackmill/accessd/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// LoginRequest carries the credential payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the session token plus the resolved account.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Authenticator is what the router needs from an auth provider: a
// credential check and the middleware that resolves a token to a user.
// The middleware stores the user in the Gin context under UserContextKey
// for handlers and the capability gate to read.
type Authenticator interface {
	Login(username, password string) (*LoginResponse, error)
	Middleware() gin.HandlerFunc
}
