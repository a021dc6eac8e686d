package handlers

import (
	"errors"
	"net/http"

	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), input.Username)
	if errors.Is(err, database.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}

// Register creates an operator. The first account becomes the admin,
// every later one a cashier.
func (h *Handler) Register(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	ctx := c.Request.Context()

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	n, err := h.users.Count(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	role := RoleCashier
	if n == 0 {
		role = RoleAdmin
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := h.users.Create(ctx, &user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User likely already exists"})
		return
	}

	h.logger.Info("operator registered", zap.String("username", user.Username), zap.String("role", role))
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "role": role})
}
