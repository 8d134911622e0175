package handlers

import (
	"net/http"

	"modpanel_backend/internal/middleware"
	"modpanel_backend/internal/services"
	"modpanel_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	*BaseHandler
	referralService services.ReferralService
}

func NewReferralHandler(base *BaseHandler, referralService services.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		BaseHandler:     base,
		referralService: referralService,
	}
}

func (h *ReferralHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/referral-codes")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateCode)
		admin.GET("", h.ListCodes)
		admin.GET("/:code/stats", h.CodeStats)
	}
}

func (h *ReferralHandler) CreateCode(c *gin.Context) {
	var req dto.CreateReferralRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	code, err := h.referralService.CreateCode(db, &req, adminID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, code)
}

func (h *ReferralHandler) ListCodes(c *gin.Context) {
	db := h.GetDB(c)

	codes, err := h.referralService.ListCodes(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func (h *ReferralHandler) CodeStats(c *gin.Context) {
	code := c.Param("code")

	db := h.GetDB(c)

	usages, err := h.referralService.CodeStats(db, code)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":   code,
		"usages": usages,
	})
}
