package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stackmill/accessd/internal/auth"
	"github.com/stackmill/accessd/internal/models"
	"github.com/stackmill/accessd/internal/service"
)

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.LoginResponse
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /auth/login [post]
func Login(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := authenticator.Login(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				fail(c, http.StatusUnauthorized, "invalid credentials")
				return
			}
			fail(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// OIDCLogin redirects the browser to the identity provider.
func OIDCLogin(oidcAuth *auth.OIDCAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := uuid.NewString()
		c.Redirect(http.StatusFound, oidcAuth.GetAuthURL(state))
	}
}

// OIDCCallback completes the OAuth2 code exchange and returns a local JWT.
func OIDCCallback(oidcAuth *auth.OIDCAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			fail(c, http.StatusBadRequest, "missing code")
			return
		}

		resp, err := oidcAuth.HandleCallback(c.Request.Context(), code)
		if err != nil {
			fail(c, http.StatusUnauthorized, "authentication failed")
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// currentActor resolves the authenticated user stored by the auth
// middleware into the identity the service layer records.
func currentActor(c *gin.Context) (service.Actor, bool) {
	v, exists := c.Get(auth.UserContextKey)
	if !exists {
		return service.Actor{}, false
	}
	user, ok := v.(*models.User)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: user.ID, Name: user.Username}, true
}
