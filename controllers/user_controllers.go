package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/middlewares"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

type UserController struct {
	Auth *services.AuthService
}

func NewUserController(svc *services.Container) *UserController {
	return &UserController{Auth: svc.Auth}
}

// Login -> POST /login
func (uc *UserController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	res, err := uc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", res)
}

func (uc *UserController) Logout(c *gin.Context) {
	if err := uc.Auth.Logout(c.GetString(middlewares.ContextToken)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

func (uc *UserController) Profile(c *gin.Context) {
	user, err := uc.Auth.Profile(c.Request.Context(), c.GetUint(middlewares.ContextUserID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User profile", user)
}

// Register -> POST /admin/users
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	user, err := uc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered successfully", user)
}

func (uc *UserController) List(c *gin.Context) {
	users, err := uc.Auth.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", users)
}
