package handlers

import (
	"net/http"

	"modpanel_backend/internal/middleware"
	"modpanel_backend/internal/services"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type KeyHandler struct {
	*BaseHandler
	keyService services.KeyService
}

func NewKeyHandler(base *BaseHandler, keyService services.KeyService) *KeyHandler {
	return &KeyHandler{
		BaseHandler: base,
		keyService:  keyService,
	}
}

func (h *KeyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/license-keys")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("", h.GenerateKeys)
		admin.GET("", h.ListKeys)
		admin.GET("/mod/:modId", h.ListKeysByMod)
		admin.DELETE("/:id", h.DeleteKey)
		// Массовые удаления - через query-параметры DELETE "":
		// статические сегменты /by-mod и /unused не могут жить рядом
		// с wildcard :id внутри одного дерева DELETE-маршрутов
		admin.DELETE("", h.BulkDeleteKeys)
	}
}

func (h *KeyHandler) GenerateKeys(c *gin.Context) {
	var req dto.CreateKeysRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	keys, err := h.keyService.GenerateKeys(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"count": len(keys),
		"keys":  keys,
	})
}

func (h *KeyHandler) ListKeys(c *gin.Context) {
	db := h.GetDB(c)

	keys, err := h.keyService.ListKeys(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (h *KeyHandler) ListKeysByMod(c *gin.Context) {
	modID, ok := h.RequireParamUUID(c, "modId")
	if !ok {
		return
	}

	db := h.GetDB(c)

	keys, err := h.keyService.ListKeysByMod(db, modID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (h *KeyHandler) DeleteKey(c *gin.Context) {
	keyID, ok := h.RequireParamUUID(c, "id")
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.keyService.DeleteKey(db, keyID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Key deleted"})
}

// BulkDeleteKeys обрабатывает DELETE /admin/license-keys с query-параметром:
// ?mod_id=<uuid> удаляет все ключи мода, ?unused=true - все свободные ключи
func (h *KeyHandler) BulkDeleteKeys(c *gin.Context) {
	db := h.GetDB(c)

	if modID := c.Query("mod_id"); modID != "" {
		if err := h.validator.ValidateVar(modID, "uuid"); err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid mod_id: not a UUID"))
			return
		}

		deleted, err := h.keyService.DeleteKeysByMod(db, modID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
		return
	}

	if c.Query("unused") == "true" {
		deleted, err := h.keyService.DeleteUnusedKeys(db)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
		return
	}

	apperrors.HandleError(c, apperrors.NewBadRequestError("Specify mod_id=<uuid> or unused=true"))
}
