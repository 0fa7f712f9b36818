package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/middleware"
	"slicehub/api/internal/policy"
	"slicehub/api/internal/service"
)

func (h HandlerSet) Me(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	user, err := h.users.GetByID(c.Request.Context(), principal.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if !policy.IsAdmin(principal) {
		fail(c, apperr.Forbidden("unable to list users"))
		return
	}

	limit := 50
	offset := 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h HandlerSet) UpdateUser(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	targetID := c.Param("id")

	if !policy.IsSelfOrAdmin(principal, targetID) {
		fail(c, apperr.Forbidden("unable to update user"))
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.BadRequest("invalid update payload"))
		return
	}

	result, err := h.authService.UpdateUser(c.Request.Context(), targetID, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}
