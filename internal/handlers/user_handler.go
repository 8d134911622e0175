package handlers

import (
	"net/http"

	"modpanel_backend/internal/middleware"
	"modpanel_backend/internal/services"
	"modpanel_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService   services.UserService
	deviceService services.DeviceService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, deviceService services.DeviceService) *UserHandler {
	return &UserHandler{
		BaseHandler:   base,
		userService:   userService,
		deviceService: deviceService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/profile", h.GetProfile)
		user.GET("/devices", h.GetDevices)
		user.GET("/can-reset-ip", h.CanResetIP)
		user.POST("/reset-ip", h.ResetIP)
	}

	admin := rg.Group("/admin/users")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("", h.ListUsers)
		// Деревья маршрутов в gin раздельные по HTTP-методу:
		// GET /search не пересекается с DELETE /:id
		admin.GET("/search", h.SearchUsers)
		admin.DELETE("/:id", h.DeleteUser)
		admin.POST("/:id/balance", h.AdjustBalance)
		admin.PUT("/:id/balance", h.SetBalance)
		admin.POST("/:id/device-limit", h.SetDeviceLimit)
		admin.POST("/:id/block", h.SetBlocked)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	user, err := h.userService.GetProfile(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetDevices(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	devices, err := h.deviceService.GetActiveDevices(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *UserHandler) CanResetIP(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	resp, err := h.deviceService.CanResetIP(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetIP - самостоятельный сброс привязки устройств.
// Новым IP становится адрес, с которого пришел запрос.
func (h *UserHandler) ResetIP(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ResetIPRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	resp, err := h.deviceService.ResetIP(db, userID, req.OldIP, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Admin handlers

func (h *UserHandler) ListUsers(c *gin.Context) {
	db := h.GetDB(c)

	users, err := h.userService.ListUsers(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SearchUsers ищет пользователей по подстроке имени (?q=)
func (h *UserHandler) SearchUsers(c *gin.Context) {
	db := h.GetDB(c)

	users, err := h.userService.SearchUsers(db, c.Query("q"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.DeleteUser(db, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *UserHandler) AdjustBalance(c *gin.Context) {
	userID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustBalanceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	newBalance, err := h.userService.AdjustBalance(db, userID, req.Amount)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": newBalance})
}

func (h *UserHandler) SetBalance(c *gin.Context) {
	userID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SetBalanceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.SetBalance(db, userID, req.Balance); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": req.Balance})
}

func (h *UserHandler) SetDeviceLimit(c *gin.Context) {
	userID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SetDeviceLimitRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.SetDeviceLimit(db, userID, req.Limit); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device limit updated"})
}

func (h *UserHandler) SetBlocked(c *gin.Context) {
	userID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SetBlockedRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.SetBlocked(db, userID, req.Blocked); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": req.Blocked})
}
