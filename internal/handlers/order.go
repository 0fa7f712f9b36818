package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/middleware"
	"slicehub/api/internal/models"
	"slicehub/api/internal/policy"
)

func (h HandlerSet) Menu(c *gin.Context) {
	items, err := h.orderService.Menu(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

type addMenuItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

func (h HandlerSet) AddMenuItem(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if !policy.IsAdmin(principal) {
		fail(c, apperr.Forbidden("unable to add menu item"))
		return
	}

	var req addMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		fail(c, apperr.BadRequest("menu item title is required"))
		return
	}

	items, err := h.orderService.AddMenuItem(c.Request.Context(), models.MenuItem{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h HandlerSet) ListOrders(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	orders, err := h.orderService.ListByUser(c.Request.Context(), principal.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dinerId": principal.ID,
		"orders":  orders,
	})
}

type placeOrderRequest struct {
	FranchiseID string             `json:"franchiseId"`
	StoreID     string             `json:"storeId"`
	Items       []models.OrderItem `json:"items"`
}

func (h HandlerSet) PlaceOrder(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		fail(c, apperr.BadRequest("order items are required"))
		return
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), principal, models.Order{
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       req.Items,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":     result.Order,
		"reportUrl": result.ReportURL,
		"jwt":       result.JWT,
	})
}
