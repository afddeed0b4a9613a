package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stackmill/accessd/internal/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// OIDCAuthenticator provides generic OIDC authentication. Session tokens
// are still local JWTs, minted by the embedded BasicAuthenticator.
type OIDCAuthenticator struct {
	provider  *oidc.Provider
	config    *oauth2.Config
	verifier  *oidc.IDTokenVerifier
	db        *gorm.DB
	basicAuth *BasicAuthenticator
}

// OIDCConfig holds OIDC configuration
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// NewOIDCAuthenticator creates a new OIDC authenticator
func NewOIDCAuthenticator(ctx context.Context, cfg OIDCConfig, db *gorm.DB, jwtSecret string) (*OIDCAuthenticator, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return &OIDCAuthenticator{
		provider:  provider,
		config:    oauth2Config,
		verifier:  verifier,
		db:        db,
		basicAuth: NewBasicAuthenticator(db, jwtSecret),
	}, nil
}

// GetAuthURL returns the URL to redirect users to for authentication
func (a *OIDCAuthenticator) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// HandleCallback handles the OAuth2 callback
func (a *OIDCAuthenticator) HandleCallback(ctx context.Context, code string) (*LoginResponse, error) {
	oauth2Token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in token response")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Sub               string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	username := claims.Email
	if username == "" {
		username = claims.PreferredUsername
	}
	if username == "" {
		username = claims.Sub
	}

	user, err := a.findOrCreateUser(username, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	token, err := a.basicAuth.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	slog.Info("User logged in via OIDC", "user_id", user.ID, "username", user.Username)
	return &LoginResponse{
		Token: token,
		User:  user,
	}, nil
}

// findOrCreateUser finds an existing user or creates a new one
func (a *OIDCAuthenticator) findOrCreateUser(username, email string) (*models.User, error) {
	var user models.User

	result := a.db.Where("username = ? OR email = ?", username, email).First(&user)
	if result.Error == nil {
		return &user, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	user = models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		// OIDC users authenticate upstream and carry no local password
		PasswordHash: "",
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("Created new user from OIDC", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

// Login delegates to the local password flow so OIDC deployments keep the
// bootstrap admin account usable.
func (a *OIDCAuthenticator) Login(username, password string) (*LoginResponse, error) {
	return a.basicAuth.Login(username, password)
}

// Middleware returns the token-validation middleware (local JWTs).
func (a *OIDCAuthenticator) Middleware() gin.HandlerFunc {
	return a.basicAuth.Middleware()
}
