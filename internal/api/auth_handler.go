package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vyam/fitness-app/internal/domain"
	"vyam/fitness-app/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	Profile    *domain.Profile `json:"profile,omitempty"`
	HasProfile bool            `json:"hasProfile"`
	Favorites  []string        `json:"favorites"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// SignUp godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body SignUpRequest true "Sign-up details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrInvalidCredentials) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during sign-up")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) || errors.Is(err, service.ErrInvalidCredentials) {
			abortWithError(c, http.StatusUnauthorized, service.ErrAuthenticationFailed.Error())
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// Logout godoc
// @Summary Revoke the caller's token
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(ContextTokenKey)
	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	favorites := user.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return UserResponse{
		ID:         user.ID.Hex(),
		Email:      user.Email,
		Profile:    user.Profile,
		HasProfile: user.HasProfile(),
		Favorites:  favorites,
		CreatedAt:  user.CreatedAt,
	}
}
