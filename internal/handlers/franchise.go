package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/middleware"
	"slicehub/api/internal/models"
	"slicehub/api/internal/policy"
	"slicehub/api/internal/repository"
)

func (h HandlerSet) ListFranchises(c *gin.Context) {
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

	franchises, err := h.franchises.List(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"franchises": franchises})
}

func (h HandlerSet) ListUserFranchises(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	userID := c.Param("id")

	if !policy.IsSelfOrAdmin(principal, userID) {
		fail(c, apperr.Forbidden("unable to list franchises"))
		return
	}

	franchises, err := h.franchises.ListByUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"franchises": franchises})
}

type createFranchiseRequest struct {
	Name   string `json:"name"`
	Admins []struct {
		Email string `json:"email"`
	} `json:"admins"`
}

func (h HandlerSet) CreateFranchise(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if !policy.IsAdmin(principal) {
		fail(c, apperr.Forbidden("unable to create a franchise"))
		return
	}

	var req createFranchiseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		fail(c, apperr.BadRequest("franchise name is required"))
		return
	}

	admins := make([]models.FranchiseAdmin, 0, len(req.Admins))
	for _, admin := range req.Admins {
		user, err := h.users.FindByEmail(c.Request.Context(), admin.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				fail(c, apperr.NotFound(fmt.Sprintf("unknown user for franchise admin %s provided", admin.Email)))
				return
			}
			fail(c, err)
			return
		}
		admins = append(admins, models.FranchiseAdmin{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
	}

	franchise, err := h.franchises.Create(c.Request.Context(), req.Name, admins)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, franchise)
}

func (h HandlerSet) DeleteFranchise(c *gin.Context) {
	if err := h.franchises.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error().Err(err).Str("franchise_id", c.Param("id")).Msg("franchise delete failed")
		fail(c, apperr.Internal("unable to delete franchise", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "franchise deleted"})
}

type createStoreRequest struct {
	Name string `json:"name"`
}

func (h HandlerSet) CreateStore(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	franchiseID := c.Param("id")

	franchise, err := h.franchises.GetByID(c.Request.Context(), franchiseID)
	if err != nil {
		if errors.Is(err, repository.ErrFranchiseNotFound) {
			fail(c, apperr.NotFound("unknown franchise"))
			return
		}
		fail(c, err)
		return
	}

	if !policy.IsFranchiseAdminOrAdmin(principal, franchise) {
		fail(c, apperr.Forbidden("unable to create a store"))
		return
	}

	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		fail(c, apperr.BadRequest("store name is required"))
		return
	}

	store, err := h.franchises.CreateStore(c.Request.Context(), franchiseID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, store)
}

func (h HandlerSet) DeleteStore(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	franchiseID := c.Param("id")

	franchise, err := h.franchises.GetByID(c.Request.Context(), franchiseID)
	if err != nil {
		if errors.Is(err, repository.ErrFranchiseNotFound) {
			fail(c, apperr.NotFound("unknown franchise"))
			return
		}
		fail(c, err)
		return
	}

	if !policy.IsFranchiseAdminOrAdmin(principal, franchise) {
		fail(c, apperr.Forbidden("unable to delete a store"))
		return
	}

	if err := h.franchises.DeleteStore(c.Request.Context(), franchiseID, c.Param("storeId")); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			fail(c, apperr.NotFound("unknown store"))
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "store deleted"})
}
