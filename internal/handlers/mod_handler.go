package handlers

import (
	"net/http"

	"modpanel_backend/internal/middleware"
	"modpanel_backend/internal/services"
	"modpanel_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ModHandler struct {
	*BaseHandler
	modService services.ModService
}

func NewModHandler(base *BaseHandler, modService services.ModService) *ModHandler {
	return &ModHandler{
		BaseHandler: base,
		modService:  modService,
	}
}

func (h *ModHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Каталог доступен любому залогиненному пользователю
	user := rg.Group("/user")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/mods", h.ListMods)
		user.GET("/mods/:id", h.GetMod)
	}

	admin := rg.Group("/admin/mods")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("", h.ListMods)
		admin.POST("", h.CreateMod)
		admin.GET("/:id", h.GetMod)
		admin.DELETE("/:id", h.DeleteMod)
		admin.POST("/:id/variants", h.AddVariant)
	}

	// Отдельная группа: DELETE /admin/mods/variants/:variantId
	// конфликтовал бы с DELETE /admin/mods/:id в дереве DELETE-маршрутов
	variants := rg.Group("/admin/variants")
	variants.Use(middleware.AuthMiddleware())
	variants.Use(middleware.AdminMiddleware())
	{
		variants.DELETE("/:variantId", h.DeleteVariant)
	}
}

func (h *ModHandler) ListMods(c *gin.Context) {
	db := h.GetDB(c)

	mods, err := h.modService.ListMods(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mods": mods})
}

func (h *ModHandler) GetMod(c *gin.Context) {
	modID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	db := h.GetDB(c)

	mod, err := h.modService.GetMod(db, modID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mod)
}

func (h *ModHandler) CreateMod(c *gin.Context) {
	var req dto.CreateModRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	mod, err := h.modService.CreateMod(db, &req, adminID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mod)
}

func (h *ModHandler) DeleteMod(c *gin.Context) {
	modID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.modService.DeleteMod(db, modID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mod deleted"})
}

func (h *ModHandler) AddVariant(c *gin.Context) {
	modID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateVariantRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	variant, err := h.modService.AddVariant(db, modID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, variant)
}

func (h *ModHandler) DeleteVariant(c *gin.Context) {
	variantID, ok := h.RequireParamUUID(c, "variantId")
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.modService.DeleteVariant(db, variantID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted"})
}
