package handler

import (
	"net/http"

	"campuslink/backend/internal/models"
	"campuslink/backend/internal/service"
	"campuslink/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves registration, login and the password reset flow.
type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"jdoe"`
	Email    string `json:"email" binding:"required,email" example:"jdoe@example.edu"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
	FullName string `json:"full_name" example:"Jane Doe"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"jdoe"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// ForgotPasswordInput requests a password reset token.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput redeems a password reset token.
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// endregion

// Register godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates a user with username/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByLogin(c.Request.Context(), input.Login)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Description  Mints a single-use reset token for the account. The response is the same whether or not the account exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body ForgotPasswordInput true "Account email"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Token delivery belongs to a mailer; minting failures for unknown
	// accounts are deliberately indistinguishable from success.
	_, _ = h.users.MintResetToken(c.Request.Context(), input.Email)

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset token has been issued"})
}

// ResetPassword godoc
// @Summary      Reset password
// @Description  Redeems a reset token and installs a new password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body ResetPasswordInput true "Token and new password"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Token expired or used"
// @Failure      404  {object}  ErrorResponse "Unknown token"
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), input.Token, string(hashedPassword)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
