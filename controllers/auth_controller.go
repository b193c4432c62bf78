package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"retro-store/database"
	"retro-store/models"
	"retro-store/store"
	"retro-store/utils"
)

func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := repo.CreateUser(c.Request.Context(), req)
	switch {
	case errors.Is(err, database.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	case errors.Is(err, database.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	case err != nil:
		internalError(c, "Failed to register user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := repo.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if errors.Is(err, database.ErrInvalidCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		internalError(c, "Login failed", err)
		return
	}

	token, err := utils.GenerateToken(cfg.JWTSecret, user.Username, user.UserType, cfg.JWTTTL)
	if err != nil {
		internalError(c, "Login failed", err)
		return
	}

	_, notice, err := stateStore.Dispatch(c.Request.Context(), user.Username,
		store.Login{Username: user.Username, UserType: user.UserType})
	if err != nil {
		// token 仍然有效，购物车请求会按 token 补写会话
		log.Printf("Failed to record session for %s: %v", user.Username, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  notice.Text,
		"username": user.Username,
		"userType": user.UserType,
		"token":    token,
	})
}

// Logout 清空购物车与订单表状态，token 在过期前仍有效
func Logout(c *gin.Context) {
	_, notice, err := stateStore.Dispatch(c.Request.Context(), currentUser(c), store.Logout{})
	if err != nil {
		reducerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": notice.Text})
}
