package handlers

import (
	"net/http"

	"modpanel_backend/internal/middleware"
	"modpanel_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	*BaseHandler
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(base *BaseHandler, purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler:     base,
		purchaseService: purchaseService,
	}
}

func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	user.Use(middleware.AuthMiddleware())
	{
		user.POST("/purchase/:variantId", h.Purchase)
		user.GET("/purchases", h.GetMyPurchases)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/purchases", h.GetAllPurchases)
	}
}

func (h *PurchaseHandler) Purchase(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	variantID, ok := h.RequireParamUUID(c, "variantId")
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.purchaseService.Purchase(db, userID, variantID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseHandler) GetMyPurchases(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	purchases, err := h.purchaseService.GetUserPurchases(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

func (h *PurchaseHandler) GetAllPurchases(c *gin.Context) {
	db := h.GetDB(c)

	purchases, err := h.purchaseService.GetAllPurchases(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}
