package identity

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/tilt-maze/identity"
	"github.com/beka-birhanu/tilt-maze/service"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new AuthServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/register", c.registerUser)
		auth.POST("/login", c.login)
		auth.POST("/guest", c.guest)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
}

// registerUser handles user registration.
func (c *IdentityServer) registerUser(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := c.authService.Register(ctx.Request.Context(), request.Username, request.Password)
	switch {
	case err == nil:
	case errors.Is(err, dmn.ErrUsernameConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case isValidationError(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		return
	}

	response := gin.H{"message": "User registered successfully"}
	ctx.JSON(http.StatusCreated, response)
}

// login handles user login.
func (c *IdentityServer) login(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := c.authService.SignIn(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
		return
	}

	ctx.JSON(http.StatusOK, toResponse(user, token))
}

// guest hands out a token for an anonymous player.
func (c *IdentityServer) guest(ctx *gin.Context) {
	user, token, err := c.authService.Guest()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not create guest"})
		return
	}
	ctx.JSON(http.StatusOK, toResponse(user, token))
}

func toResponse(user *dmn.User, token string) *AuthResponse {
	return &AuthResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		GamesWon: user.GamesWon,
		Guest:    user.Guest,
		Token:    token,
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		dmn.ErrUsernameTooShort,
		dmn.ErrUsernameTooLong,
		dmn.ErrInvalidUsernameFormat,
		dmn.ErrWeakPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
